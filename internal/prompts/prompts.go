// Package prompts holds the text engine shared by every flow: placeholder
// expansion, section parsing, and the embedded instruction templates sent to
// the model.
package prompts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed system.md
var systemBase string

//go:embed request.md
var requestBase string

//go:embed tasks/*.md
var taskFiles embed.FS

// BuildSystemPrompt renders the system instruction for the given display
// language ("Vietnamese", "English") and its bracket tag ("TIẾNG VIỆT", "ENGLISH").
func BuildSystemPrompt(language, tag string) string {
	return Expand(systemBase, map[string]string{
		"language":     language,
		"language_tag": tag,
	})
}

// BuildRequestPrompt wraps rendered task instructions and the user input
// summary into the final user message.
func BuildRequestPrompt(taskInstructions, inputsJSON string) string {
	return Expand(requestBase, map[string]string{
		"task_instructions": taskInstructions,
		"inputs_json":       inputsJSON,
	})
}

// Task returns the raw instruction template stored under tasks/<name>.md.
func Task(name string) (string, error) {
	data, err := taskFiles.ReadFile("tasks/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("unknown task template %q: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// RenderTask expands the named task template with values. Unknown names
// render as the empty string.
func RenderTask(name string, values map[string]string) string {
	body, err := Task(name)
	if err != nil {
		return ""
	}
	return Expand(body, values)
}
