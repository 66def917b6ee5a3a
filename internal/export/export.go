// Package export copies prompts to the clipboard or writes them to disk.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

// Format is the shape of an exported prompt.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Payload is a prompt ready to be copied or saved.
type Payload struct {
	Format Format
	Body   string
}

// Text wraps plain prompt text.
func Text(s string) Payload {
	return Payload{Format: FormatText, Body: s}
}

// JSON encodes v with two-space indentation. Raw JSON bytes are reindented.
func JSON(v any) (Payload, error) {
	var data []byte
	switch raw := v.(type) {
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return Payload{}, fmt.Errorf("indent json: %w", err)
		}
		data = buf.Bytes()
	default:
		var err error
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return Payload{}, fmt.Errorf("encode json: %w", err)
		}
	}
	return Payload{Format: FormatJSON, Body: string(data)}, nil
}

// Ext returns the file extension matching the payload format.
func (p Payload) Ext() string {
	if p.Format == FormatJSON {
		return ".json"
	}
	return ".txt"
}

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// SystemClipboard returns the OS clipboard.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

// Available reports whether a clipboard tool is present.
func Available() bool {
	return !clipboard.Unsupported
}

// Copy puts the payload on cb.
func Copy(cb Clipboard, p Payload) error {
	if err := cb.WriteAll(p.Body); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// WriteFile saves the payload to path, adding the format's extension when
// path has none. It returns the path written.
func WriteFile(path string, p Payload) (string, error) {
	if filepath.Ext(path) == "" {
		path += p.Ext()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create dir: %w", err)
		}
	}
	body := p.Body
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
