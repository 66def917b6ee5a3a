package generate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/sant0-9/promptcraft/internal/llm"
	"github.com/sant0-9/promptcraft/internal/prompts"
)

// ErrMalformedResponse is returned when the model reply is not the expected
// JSON object.
var ErrMalformedResponse = errors.New("malformed response")

// Assumption is a detail the model inferred on its own.
type Assumption struct {
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare string.
func (a *Assumption) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Assumption{Value: s, Source: "model"}
		return nil
	}
	type plain Assumption
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Assumption(p)
	return nil
}

// Meta describes where an output came from.
type Meta struct {
	Type      Task      `json:"type"`
	Subtype   string    `json:"subtype"`
	CreatedAt time.Time `json:"created_at"`
}

// Output is a validated generation result.
type Output struct {
	InputsRaw       json.RawMessage `json:"inputs_raw,omitempty"`
	CompletedFields json.RawMessage `json:"completed_fields,omitempty"`
	Assumptions     []Assumption    `json:"assumptions"`
	FinalPromptText string          `json:"final_prompt_text"`
	FinalPromptJSON json.RawMessage `json:"final_prompt_json,omitempty"`
	Meta            Meta            `json:"meta"`
}

// PrettyJSON returns final_prompt_json indented with two spaces, or "{}"
// when the model sent none.
func (o *Output) PrettyJSON() string {
	if len(bytes.TrimSpace(o.FinalPromptJSON)) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, o.FinalPromptJSON, "", "  "); err != nil {
		return string(o.FinalPromptJSON)
	}
	return buf.String()
}

// StructuredView splits the final text into labelled sections. It is only
// computed when asked for.
func StructuredView(o *Output) prompts.Document {
	return prompts.ParseSections(o.FinalPromptText)
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// decodeOutput validates a raw model reply. With repair set, invalid JSON
// gets one repair attempt before being rejected.
func decodeOutput(raw string, repair bool) (*Output, error) {
	body := stripFence(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	if !json.Valid([]byte(body)) {
		if !repair {
			return nil, fmt.Errorf("%w: reply is not valid JSON", ErrMalformedResponse)
		}
		fixed, err := jsonrepair.JSONRepair(body)
		if err != nil {
			return nil, fmt.Errorf("%w: repair failed: %v", ErrMalformedResponse, err)
		}
		body = fixed
	}

	var out Output
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(out.FinalPromptText) == "" {
		return nil, fmt.Errorf("%w: final_prompt_text is missing", ErrMalformedResponse)
	}
	return &out, nil
}

// Outcome tells callers how a generation ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeMissingCredential
	OutcomeProviderError
	OutcomeResponseError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMissingCredential:
		return "missing_credential"
	case OutcomeProviderError:
		return "provider_error"
	case OutcomeResponseError:
		return "response_error"
	}
	return "unknown"
}

// Classify maps an error returned by Generate to an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, llm.ErrMissingCredential):
		return OutcomeMissingCredential
	case errors.Is(err, ErrMalformedResponse), llm.KindOf(err) == llm.KindResponse:
		return OutcomeResponseError
	}
	return OutcomeProviderError
}
