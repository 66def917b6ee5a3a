package prompts

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var leftoverPlaceholder = regexp.MustCompile(`\{\{[^}]+\}\}`)

func TestExpand(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		values map[string]string
		want   string
	}{
		{
			name: "no placeholders",
			body: "  Plain body text.\n",
			want: "Plain body text.",
		},
		{
			name:   "all occurrences",
			body:   "{{a}}-{{a}}",
			values: map[string]string{"a": "x"},
			want:   "x-x",
		},
		{
			name:   "key used three times",
			body:   "{{k}} / {{k}} / {{k}}",
			values: map[string]string{"k": "v"},
			want:   "v / v / v",
		},
		{
			name: "missing key",
			body: "{{a}}",
			want: "",
		},
		{
			name:   "explicit empty value",
			body:   "{{a}}",
			values: map[string]string{"a": ""},
			want:   "",
		},
		{
			name:   "unknown key stripped",
			body:   "Hello {{name}}{{unknown}}!",
			values: map[string]string{"name": "Lan"},
			want:   "Hello Lan!",
		},
		{
			name:   "markup inserted literally",
			body:   "<p>{{html}}</p>",
			values: map[string]string{"html": "<b>&amp;</b> $1 \\n"},
			want:   "<p><b>&amp;</b> $1 \\n</p>",
		},
		{
			name:   "value is not re-expanded",
			body:   "{{a}}",
			values: map[string]string{"a": "{{b}}", "b": "nope"},
			want:   "",
		},
		{
			name:   "regex metacharacters in key",
			body:   "[{{a.b*}}]",
			values: map[string]string{"a.b*": "ok"},
			want:   "[ok]",
		},
		{
			name: "empty braces are not a placeholder",
			body: "keep {{}} this",
			want: "keep {{}} this",
		},
		{
			name: "unterminated placeholder kept",
			body: "start {{open and } close}",
			want: "start {{open and } close}",
		},
		{
			name:   "extra opening brace",
			body:   "{{{a}}",
			values: map[string]string{"{a": "x"},
			want:   "x",
		},
		{
			name: "trim happens after substitution",
			body: "{{lead}}  body  {{trail}}",
			want: "body",
		},
		{
			name:   "end to end greeting",
			body:   "Hello {{name}}, your topic is {{topic}}.",
			values: map[string]string{"name": "Lan", "topic": "AI"},
			want:   "Hello Lan, your topic is AI.",
		},
		{
			name:   "empty values map",
			body:   "Size: {{w}}x{{h}}",
			values: map[string]string{},
			want:   "Size: x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.body, tt.values)
			assert.Equal(t, tt.want, got)
			assert.False(t, leftoverPlaceholder.MatchString(got), "leftover placeholder in %q", got)
		})
	}
}

func TestExpandNeverLeavesPlaceholders(t *testing.T) {
	bodies := []string{
		"",
		"{{",
		"}}",
		"{{a}",
		"{{{{x}}}}",
		"{{a{{b}}}}",
		"{{{{b}}x}}",
		"{{a}}{{b}}{{c}}",
		"\x00\xff{{\x01}}",
		"{ {a} }",
	}
	values := map[string]string{
		"a": "{{",
		"b": "}}",
		"c": "{{c}}",
		"x": "{{y}}",
	}

	for _, body := range bodies {
		got := Expand(body, values)
		assert.False(t, leftoverPlaceholder.MatchString(got), "body %q produced %q", body, got)
		assert.Equal(t, got, Expand(body, values), "not deterministic for %q", body)
	}
}

func TestExpandNilValues(t *testing.T) {
	assert.Equal(t, "a  b", Expand("a {{x}} b", nil))
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("{{scale}}x for {{width}}x{{height}}, again {{scale}} {{}}")
	assert.Equal(t, []string{"scale", "width", "height"}, got)
	assert.Empty(t, Placeholders("nothing here"))
}
