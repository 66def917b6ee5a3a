package prompts

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) Value        { return Value{Text: s} }
func list(lines ...string) Value { return Value{Lines: lines} }

func TestParseSections(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Document
	}{
		{
			name: "no markers falls back untrimmed",
			in:   "  just plain text\n",
			want: Document{"prompt": text("  just plain text\n")},
		},
		{
			name: "empty input",
			in:   "",
			want: Document{"prompt": text("")},
		},
		{
			name: "single line section",
			in:   "***ROLE***\nYou are an expert.",
			want: Document{"role": text("You are an expert.")},
		},
		{
			name: "multi line section becomes list",
			in:   "***STEPS***\nDo A\nDo B\n\nDo C",
			want: Document{"steps": list("Do A", "Do B", "Do C")},
		},
		{
			name: "key normalization",
			in:   "***ROLE & CONTEXT***\nAnalyst",
			want: Document{"role_context": text("Analyst")},
		},
		{
			name: "digits and parentheses",
			in:   "***TECH SPECS (V2)***\n4K\n60fps",
			want: Document{"tech_specs_v2": list("4K", "60fps")},
		},
		{
			name: "multiple sections",
			in:   "***A***\nfoo\n***B***\nbar",
			want: Document{"a": text("foo"), "b": text("bar")},
		},
		{
			name: "mixed types",
			in:   "***CONTEXT***\n[REFERENCE IMAGE ATTACHED]\n\n***INPUT DATA***\n- Scale: 4x\n- Format: PNG\n***NOTE***\n   \n  single  \n",
			want: Document{
				"context":    text("[REFERENCE IMAGE ATTACHED]"),
				"input_data": list("- Scale: 4x", "- Format: PNG"),
				"note":       text("single"),
			},
		},
		{
			name: "marker at end of input has empty value",
			in:   "***A***\nfoo\n***END***",
			want: Document{"a": text("foo"), "end": text("")},
		},
		{
			name: "marker followed only by blank lines",
			in:   "***EMPTY***\n\n   \n",
			want: Document{"empty": text("")},
		},
		{
			name: "inline marker text is body",
			in:   "***A***\nsee ***B*** here\nand more",
			want: Document{"a": list("see ***B*** here", "and more")},
		},
		{
			name: "indented marker is not a marker",
			in:   "***A***\n ***B***\nx",
			want: Document{"a": list("***B***", "x")},
		},
		{
			name: "lowercase marker is not a marker",
			in:   "***role***\nbody",
			want: Document{"prompt": text("***role***\nbody")},
		},
		{
			name: "text before first marker is dropped",
			in:   "preamble\n***GOAL***\nWin",
			want: Document{"goal": text("Win")},
		},
		{
			name: "duplicate key last write wins",
			in:   "***ROLE***\nfirst\n***ROLE***\nsecond",
			want: Document{"role": text("second")},
		},
		{
			name: "keys colliding after normalization",
			in:   "***ROLE  CONTEXT***\none\n***ROLE & CONTEXT***\ntwo",
			want: Document{"role_context": text("two")},
		},
		{
			name: "crlf line endings",
			in:   "***A***\r\nfoo\r\nbar\r\n",
			want: Document{"a": list("foo", "bar")},
		},
		{
			name: "partial marker syntax",
			in:   "*** only one side\n***\n******",
			want: Document{"prompt": text("*** only one side\n***\n******")},
		},
		{
			name: "duplicate lines kept in order",
			in:   "***L***\nx\ny\nx",
			want: Document{"l": list("x", "y", "x")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSections(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseSections() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSectionsBinaryInput(t *testing.T) {
	in := "\x00\xff\xfe***\x01***\n\x7f"
	assert.NotPanics(t, func() {
		got := ParseSections(in)
		assert.Equal(t, Document{"prompt": text(in)}, got)
	})
}

func TestSectionsOrder(t *testing.T) {
	got := Sections("***B***\n1\n***A***\n2\n***B***\n3")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "a", "b"}, []string{got[0].Key, got[1].Key, got[2].Key})
	assert.Equal(t, "B", got[0].Label)
	assert.Nil(t, Sections("no markers"))
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"ROLE & CONTEXT":   "role_context",
		"TECH SPECS (V2)":  "tech_specs_v2",
		"  LEADING":        "leading",
		"(TRAILING) ":      "trailing",
		"A  &&  B":         "a_b",
		" & ":              "",
		"OUTPUT FORMAT 16": "output_format_16",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeKey(in), in)
	}
}

func TestDocumentJSON(t *testing.T) {
	doc := ParseSections("***GOAL***\nWin\n***STEPS***\nPlan\nExecute")

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"goal":"Win","steps":["Plan","Execute"]}`, string(data))

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc, back)
}

func TestExpandThenParse(t *testing.T) {
	t.Run("no markers", func(t *testing.T) {
		out := Expand("Hello {{name}}, your topic is {{topic}}.", map[string]string{"name": "Lan", "topic": "AI"})
		assert.Equal(t, Document{"prompt": text("Hello Lan, your topic is AI.")}, ParseSections(out))
	})

	t.Run("sections", func(t *testing.T) {
		out := Expand("***GOAL***\n{{goal}}\n***STEPS***\n{{step1}}\n{{step2}}", map[string]string{
			"goal":  "Win",
			"step1": "Plan",
			"step2": "Execute",
		})
		assert.Equal(t, "***GOAL***\nWin\n***STEPS***\nPlan\nExecute", out)
		assert.Equal(t, Document{"goal": text("Win"), "steps": list("Plan", "Execute")}, ParseSections(out))
	})
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "a\nb", list("a", "b").String())
	assert.Equal(t, "a", text("a").String())
	assert.False(t, text("").IsList())
}
