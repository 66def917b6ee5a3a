package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// postJSON sends payload to url and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return networkError(provider, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("provider", provider).
		Int("status", resp.StatusCode).
		Int("request_bytes", len(body)).
		Dur("took", time.Since(start)).
		Msg("provider call")

	if resp.StatusCode != http.StatusOK {
		data := readErrorBody(resp.Body)
		return statusError(provider, resp.StatusCode, data)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return responseError(provider, "cannot decode response", err)
	}
	return nil
}

// ping issues a GET and treats any status in ok as reachable.
func ping(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, ok ...int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return networkError(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	for _, s := range ok {
		if resp.StatusCode == s {
			return nil
		}
	}
	data := readErrorBody(resp.Body)
	return statusError(provider, resp.StatusCode, data)
}

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

func readErrorBody(r io.Reader) []byte {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return data
}
