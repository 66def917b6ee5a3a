package prompts

import (
	"encoding/json"
	"strings"
)

// FallbackKey is the single key used when text has no section markers.
const FallbackKey = "prompt"

// Value is a section value: either a single string or a list of lines.
type Value struct {
	Text  string
	Lines []string
}

// IsList reports whether the value holds more than one line.
func (v Value) IsList() bool {
	return v.Lines != nil
}

// String renders the value as plain text, one line per list entry.
func (v Value) String() string {
	if v.IsList() {
		return strings.Join(v.Lines, "\n")
	}
	return v.Text
}

// MarshalJSON encodes a list value as a JSON array and anything else as a
// JSON string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.Lines)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil && lines != nil {
		*v = Value{Lines: lines}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*v = Value{Text: text}
	return nil
}

// Section is one marker and the value of the body that follows it.
type Section struct {
	Label string
	Key   string
	Value Value
}

// Document maps normalized section keys to their values.
type Document map[string]Value

// Sections scans text for lines of the form ***LABEL*** and returns every
// section in order of appearance. Duplicate keys are kept; see ParseSections.
// It returns nil when text has no markers.
func Sections(text string) []Section {
	lines := strings.Split(text, "\n")

	var sections []Section
	var body []string
	open := false
	var label string

	flush := func() {
		if open {
			sections = append(sections, Section{
				Label: label,
				Key:   NormalizeKey(label),
				Value: sectionValue(strings.Join(body, "\n")),
			})
		}
	}

	for _, line := range lines {
		if l, ok := markerLabel(line); ok {
			flush()
			open = true
			label = l
			body = body[:0]
			continue
		}
		if open {
			body = append(body, line)
		}
	}
	flush()

	return sections
}

// ParseSections turns section-marked text into a Document. When two markers
// normalize to the same key the later one wins. Text without any markers
// yields {"prompt": text}, with text left exactly as given.
func ParseSections(text string) Document {
	sections := Sections(text)
	if len(sections) == 0 {
		return Document{FallbackKey: {Text: text}}
	}

	doc := make(Document, len(sections))
	for _, s := range sections {
		doc[s.Key] = s.Value
	}
	return doc
}

// NormalizeKey lower-cases label, collapses every run of characters outside
// [a-z0-9] into one underscore and trims underscores from both ends.
// "ROLE & CONTEXT" becomes "role_context".
func NormalizeKey(label string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// markerLabel reports whether line is a section marker and returns its label.
// A trailing carriage return is ignored so CRLF text parses the same way.
func markerLabel(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if len(line) < 7 || !strings.HasPrefix(line, "***") || !strings.HasSuffix(line, "***") {
		return "", false
	}
	label := line[3 : len(line)-3]
	for i := 0; i < len(label); i++ {
		if !isMarkerByte(label[i]) {
			return "", false
		}
	}
	return label, true
}

func isMarkerByte(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == ' ', c == '&', c == '(', c == ')':
		return true
	}
	return false
}

func sectionValue(body string) Value {
	body = strings.TrimSpace(body)
	if !strings.Contains(body, "\n") {
		return Value{Text: body}
	}

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 1 {
		return Value{Text: lines[0]}
	}
	return Value{Lines: lines}
}
