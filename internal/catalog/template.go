package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sant0-9/promptcraft/internal/prompts"
)

// Category groups templates in the library.
type Category string

const (
	CategoryImage     Category = "IMAGE"
	CategoryVideo     Category = "VIDEO"
	CategoryWriting   Category = "WRITING"
	CategoryMarketing Category = "MARKETING"
	CategoryData      Category = "DATA"
)

var categoryOrder = []Category{
	CategoryImage,
	CategoryVideo,
	CategoryWriting,
	CategoryMarketing,
	CategoryData,
}

// Label returns the category name shown in the library tabs.
func (c Category) Label(lang string) string {
	switch c {
	case CategoryImage:
		return Localize(lang, "Ảnh", "Image")
	case CategoryWriting:
		return Localize(lang, "Viết", "Writing")
	case CategoryData:
		return Localize(lang, "Dữ liệu", "Data")
	case CategoryVideo:
		return "Video"
	case CategoryMarketing:
		return "Marketing"
	}
	return string(c)
}

// Kind is the input widget a variable is filled with.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindSelect   Kind = "select"
	// KindImage holds a local file path. Only guided task forms use it.
	KindImage Kind = "image"
)

// Choice is one option of a select variable.
type Choice struct {
	Value   string `yaml:"value" validate:"required"`
	Label   string `yaml:"label"`
	LabelEn string `yaml:"label_en"`
}

// Text returns the option label in lang, falling back to the value.
func (c Choice) Text(lang string) string {
	if s := Localize(lang, c.Label, c.LabelEn); s != "" {
		return s
	}
	return c.Value
}

// Variable is one fillable slot of a template body.
type Variable struct {
	Key           string   `yaml:"key" validate:"required"`
	Label         string   `yaml:"label"`
	LabelEn       string   `yaml:"label_en"`
	Kind          Kind     `yaml:"kind" validate:"required,oneof=text textarea number select image"`
	Options       []Choice `yaml:"options,omitempty" validate:"dive"`
	Default       string   `yaml:"default,omitempty"`
	Placeholder   string   `yaml:"placeholder,omitempty"`
	PlaceholderEn string   `yaml:"placeholder_en,omitempty"`

	// Optional marks guided-form fields that may be left empty.
	Optional bool `yaml:"optional,omitempty"`
}

// Title returns the variable label in lang, falling back to the key.
func (v Variable) Title(lang string) string {
	if s := Localize(lang, v.Label, v.LabelEn); s != "" {
		return s
	}
	return v.Key
}

// Hint returns the placeholder text in lang.
func (v Variable) Hint(lang string) string {
	return Localize(lang, v.Placeholder, v.PlaceholderEn)
}

// OptionIndex returns the index of value among the options, or -1.
func (v Variable) OptionIndex(value string) int {
	for i, o := range v.Options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// Template is a reusable prompt with {{key}} placeholders.
type Template struct {
	ID            string     `yaml:"id" validate:"required"`
	Category      Category   `yaml:"category" validate:"required,oneof=IMAGE VIDEO WRITING MARKETING DATA"`
	Title         string     `yaml:"title" validate:"required"`
	TitleEn       string     `yaml:"title_en"`
	Description   string     `yaml:"description"`
	DescriptionEn string     `yaml:"description_en"`
	Icon          string     `yaml:"icon,omitempty"`
	Body          string     `yaml:"body" validate:"required"`
	Variables     []Variable `yaml:"variables" validate:"unique=Key,dive"`

	// Source is the file the template was loaded from. Built-in templates
	// carry an "embedded:" prefix.
	Source string `yaml:"-"`
}

// DisplayTitle returns the template title in lang.
func (t *Template) DisplayTitle(lang string) string {
	return Localize(lang, t.Title, t.TitleEn)
}

// DisplayDescription returns the template description in lang.
func (t *Template) DisplayDescription(lang string) string {
	return Localize(lang, t.Description, t.DescriptionEn)
}

// Builtin reports whether the template ships with the binary.
func (t *Template) Builtin() bool {
	return strings.HasPrefix(t.Source, builtinPrefix)
}

// Variable returns the variable with the given key.
func (t *Template) Variable(key string) (Variable, bool) {
	for _, v := range t.Variables {
		if v.Key == key {
			return v, true
		}
	}
	return Variable{}, false
}

// Defaults returns the non-empty default of every variable, keyed by
// variable key. Variables without a default are absent from the map.
func Defaults(t *Template) map[string]string {
	out := make(map[string]string, len(t.Variables))
	for _, v := range t.Variables {
		if v.Default != "" {
			out[v.Key] = v.Default
		}
	}
	return out
}

// Localize picks the English text when lang is "en" and it is set,
// otherwise the Vietnamese text. Either side falls back to the other.
func Localize(lang, vi, en string) string {
	if lang == "en" {
		if en != "" {
			return en
		}
		return vi
	}
	if vi != "" {
		return vi
	}
	return en
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(validateVariable, Variable{})
}

// validateVariable requires at least one option on select variables and a
// select default that is one of them.
func validateVariable(sl validator.StructLevel) {
	v := sl.Current().Interface().(Variable)
	if v.Kind != KindSelect {
		return
	}
	if len(v.Options) == 0 {
		sl.ReportError(v.Options, "Options", "Options", "options", "")
		return
	}
	if v.Default != "" && v.OptionIndex(v.Default) < 0 {
		sl.ReportError(v.Default, "Default", "Default", "oneof_option", "")
	}
}

// UnboundPlaceholders returns the placeholder keys in the body that no
// variable fills. Expand strips them.
func UnboundPlaceholders(t *Template) []string {
	var out []string
	for _, key := range prompts.Placeholders(t.Body) {
		if _, ok := t.Variable(key); !ok {
			out = append(out, key)
		}
	}
	return out
}

// Validate checks t against its field rules.
func Validate(t *Template) error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("template %q: %s failed %q", t.ID, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("template %q: %w", t.ID, err)
	}

	used := make(map[string]bool)
	for _, key := range prompts.Placeholders(t.Body) {
		used[key] = true
	}
	for _, v := range t.Variables {
		if !used[v.Key] {
			return fmt.Errorf("template %q: variable %q has no {{%s}} placeholder in the body", t.ID, v.Key, v.Key)
		}
	}
	return nil
}

// Parse decodes and validates a single YAML template.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}
