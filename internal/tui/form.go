package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/catalog"
)

// formField is one input of a form. Select variables cycle through their
// options; every other kind is typed into a text input.
type formField struct {
	v      catalog.Variable
	input  textinput.Model
	choice int
}

func (f *formField) value() string {
	if f.v.Kind == catalog.KindSelect {
		if f.choice >= 0 && f.choice < len(f.v.Options) {
			return f.v.Options[f.choice].Value
		}
		return ""
	}
	return strings.TrimSpace(f.input.Value())
}

type form struct {
	fields []formField
	focus  int
	lang   string
}

func newForm(vars []catalog.Variable, values map[string]string, lang string) *form {
	f := &form{lang: lang}
	for _, v := range vars {
		field := formField{v: v}
		val, ok := values[v.Key]
		if !ok {
			val = v.Default
		}

		if v.Kind == catalog.KindSelect {
			field.choice = max(v.OptionIndex(val), 0)
		} else {
			in := textinput.New()
			in.Placeholder = v.Hint(lang)
			in.Prompt = ""
			in.Width = 50
			in.CharLimit = 200
			switch v.Kind {
			case catalog.KindTextarea:
				in.CharLimit = 4000
			case catalog.KindImage:
				in.CharLimit = 1024
			case catalog.KindNumber:
				in.Validate = func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := strconv.ParseFloat(s, 64); err != nil {
						return fmt.Errorf("not a number")
					}
					return nil
				}
			}
			in.SetValue(val)
			field.input = in
		}
		f.fields = append(f.fields, field)
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	if i < 0 {
		i = len(f.fields) - 1
	}
	if i >= len(f.fields) {
		i = 0
	}
	if cur := &f.fields[f.focus]; cur.v.Kind != catalog.KindSelect {
		cur.input.Blur()
	}
	f.focus = i
	if cur := &f.fields[f.focus]; cur.v.Kind != catalog.KindSelect {
		return cur.input.Focus()
	}
	return nil
}

// atLast reports whether the last field has focus.
func (f *form) atLast() bool {
	return f.focus == len(f.fields)-1
}

func (f *form) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i := range f.fields {
		out[f.fields[i].v.Key] = f.fields[i].value()
	}
	return out
}

// missing returns the labels of required fields left empty.
func (f *form) missing() []string {
	var out []string
	for i := range f.fields {
		fd := &f.fields[i]
		if !fd.v.Optional && fd.value() == "" {
			out = append(out, fd.v.Title(f.lang))
		}
	}
	return out
}

// filled reports whether any field has a value.
func (f *form) filled() bool {
	for i := range f.fields {
		fd := &f.fields[i]
		if fd.v.Kind != catalog.KindSelect && fd.value() != "" {
			return true
		}
	}
	return false
}

// update handles navigation and forwards typing to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	cur := &f.fields[f.focus]

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Tab), km.String() == "down":
			return f.setFocus(f.focus + 1)
		case key.Matches(km, keys.ShiftTab), km.String() == "up":
			return f.setFocus(f.focus - 1)
		}

		if cur.v.Kind == catalog.KindSelect {
			n := len(cur.v.Options)
			switch km.String() {
			case "left", "h":
				cur.choice = (cur.choice - 1 + n) % n
			case "right", "l", " ":
				cur.choice = (cur.choice + 1) % n
			}
			return nil
		}
	}

	if cur.v.Kind == catalog.KindSelect {
		return nil
	}
	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	return cmd
}

func (f *form) view(width int) string {
	var lines []string
	for i := range f.fields {
		fd := &f.fields[i]
		label := fd.v.Title(f.lang)
		if !fd.v.Optional && fd.v.Kind != catalog.KindSelect {
			label += " *"
		}
		if fd.v.Kind == catalog.KindImage {
			label += " [" + localize(f.lang, "ảnh", "image") + "]"
		}

		labelStyle := styleSubtitle
		cursor := "  "
		if i == f.focus {
			labelStyle = styleSelected
			cursor = "> "
		}
		lines = append(lines, labelStyle.Render(cursor+label))

		var value string
		if fd.v.Kind == catalog.KindSelect {
			value = f.renderSelect(fd, i == f.focus)
		} else {
			fd.input.Width = max(width-8, 10)
			value = fd.input.View()
		}
		lines = append(lines, "    "+value, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (f *form) renderSelect(fd *formField, focused bool) string {
	var parts []string
	for i, o := range fd.v.Options {
		text := o.Text(f.lang)
		if text == "" {
			text = "-"
		}
		if i == fd.choice {
			style := lipgloss.NewStyle().Foreground(colorText).Bold(true)
			if focused {
				style = styleTabActive
			}
			parts = append(parts, style.Render(text))
		} else {
			parts = append(parts, styleTab.Render(text))
		}
	}
	return strings.Join(parts, " ")
}
