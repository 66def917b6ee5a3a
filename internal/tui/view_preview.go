package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/export"
	"github.com/sant0-9/promptcraft/internal/generate"
	"github.com/sant0-9/promptcraft/internal/prompts"
)

// expandedTemplate is the JSON form of a locally expanded template.
type expandedTemplate struct {
	Template string            `json:"template"`
	Inputs   map[string]string `json:"inputs"`
	Prompt   string            `json:"prompt"`
	Sections prompts.Document  `json:"sections,omitempty"`
}

func (a *App) previewResult() generate.Result {
	return generate.FromTemplate(a.state.template, a.state.form.values())
}

// previewPayload is what copy and save export from the preview.
func (a *App) previewPayload() (export.Payload, error) {
	res := a.previewResult()
	if a.state.previewMode != modeJSON {
		return export.Text(res.Text), nil
	}
	return export.JSON(expandedTemplate{
		Template: a.state.template.ID,
		Inputs:   a.state.form.values(),
		Prompt:   res.Text,
		Sections: res.Document,
	})
}

func (a *App) openPreview() tea.Cmd {
	a.state.previewMode = modeText
	a.view = viewPreview
	a.setPreviewContent()
	return nil
}

func (a *App) setPreviewContent() {
	p, err := a.previewPayload()
	body := p.Body
	if err != nil {
		body = err.Error()
	}
	a.state.viewport.SetContent(wrapText(body, a.state.viewport.Width-2))
	a.state.viewport.GotoTop()
}

func (a *App) renderPreview() string {
	var b strings.Builder
	s := a.state
	if s.template == nil {
		return ""
	}

	title := styleTitle.Render(s.template.DisplayTitle(a.lang()))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.modeTabs(s.previewMode, false)))
	b.WriteString("\n")

	box := styleBox.Copy().
		Width(s.viewport.Width + 2).
		Render(s.viewport.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, box))
	b.WriteString("\n")

	usage := styleSubtitle.Render(usageLine(a.previewResult().Text, s.config.Model))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, usage))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t(
		"[t] Text/JSON  [c] Sao chép  [w] Lưu file  [r] Tinh chỉnh bằng AI  [e] Sửa  [Esc] Quay lại",
		"[t] Text/JSON  [c] Copy  [w] Save file  [r] Refine with AI  [e] Edit  [Esc] Back",
	)))

	return b.String()
}

// modeTabs renders the output mode switcher.
func (a *App) modeTabs(current outputMode, structured bool) string {
	modes := []outputMode{modeText, modeJSON}
	if structured {
		modes = append(modes, modeStructured)
	}
	labels := map[outputMode]string{
		modeText:       "Text",
		modeJSON:       "JSON",
		modeStructured: a.t("Cấu trúc", "Structured"),
	}
	var tabs []string
	for _, m := range modes {
		if m == current {
			tabs = append(tabs, styleTabActive.Render(labels[m]))
		} else {
			tabs = append(tabs, styleTab.Render(labels[m]))
		}
	}
	return strings.Join(tabs, " ")
}

func (a *App) handlePreviewKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	switch {
	case key.Matches(msg, keys.Back), msg.String() == "e":
		if len(s.template.Variables) == 0 {
			a.view = viewLibrary
		} else {
			a.view = viewTemplateForm
		}
		return nil
	case key.Matches(msg, keys.Help):
		a.openHelp()
		return nil
	case msg.String() == "t":
		if s.previewMode == modeText {
			s.previewMode = modeJSON
		} else {
			s.previewMode = modeText
		}
		a.setPreviewContent()
		return nil
	case msg.String() == "c":
		p, err := a.previewPayload()
		if err != nil {
			return a.setStatus(err.Error(), true)
		}
		return a.copyPayload(p)
	case msg.String() == "w":
		p, err := a.previewPayload()
		if err != nil {
			return a.setStatus(err.Error(), true)
		}
		return a.writePayload(s.template.ID, p)
	case msg.String() == "r":
		return a.startGeneration(generate.RefineRequest(s.template, s.form.values(), a.lang()))
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

// writePayload saves p in the working directory under a timestamped name.
func (a *App) writePayload(name string, p export.Payload) tea.Cmd {
	base := fmt.Sprintf("promptcraft-%s-%s", filepath.Base(name), time.Now().Format("20060102-150405"))
	path, err := export.WriteFile(base, p)
	if err != nil {
		return a.setStatus(err.Error(), true)
	}
	return a.setStatus(a.t("Đã lưu ", "Saved ")+path, false)
}
