package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/export"
	"github.com/sant0-9/promptcraft/internal/generate"
	"github.com/sant0-9/promptcraft/internal/prompts"
)

// resizeViewport fits the scrolling area to the window.
func (a *App) resizeViewport() {
	vp := &a.state.viewport
	vp.Width = min(90, max(a.width-8, 20))
	vp.Height = max(a.height-14, 5)

	switch a.view {
	case viewResult:
		a.setResultContent()
	case viewPreview:
		a.setPreviewContent()
	}
}

// setResultContent renders the current output in the selected mode.
func (a *App) setResultContent() {
	s := a.state
	if s.output == nil {
		return
	}
	width := s.viewport.Width - 2

	var body string
	switch s.resultMode {
	case modeJSON:
		body = s.output.PrettyJSON()
	case modeStructured:
		body = a.renderStructured(s.output, width)
	default:
		body = wrapText(s.output.FinalPromptText, width)
		if len(s.output.Assumptions) > 0 {
			body += "\n\n" + a.renderAssumptions(s.output.Assumptions, width)
		}
	}
	s.viewport.SetContent(body)
	s.viewport.GotoTop()
}

func (a *App) renderAssumptions(list []generate.Assumption, width int) string {
	style := styleSubtitle
	if a.state.config.Settings.HighlightAI {
		style = lipgloss.NewStyle().Foreground(colorHighlight)
	}

	lines := []string{styleSubtitle.Render(a.t("Giả định của AI:", "AI assumptions:"))}
	for _, as := range list {
		text := "• " + as.Value
		if as.Source != "" {
			text += " (" + as.Source + ")"
		}
		lines = append(lines, style.Render(wrapText(text, width)))
	}
	return strings.Join(lines, "\n")
}

// renderStructured lists the marked sections of the prompt in order of
// first appearance.
func (a *App) renderStructured(out *generate.Output, width int) string {
	doc := generate.StructuredView(out)
	if len(doc) == 0 {
		return styleSubtitle.Render(a.t("Prompt không có mục ***NHÃN***.", "The prompt has no ***LABEL*** sections.")) +
			"\n\n" + wrapText(out.FinalPromptText, width)
	}

	var parts []string
	seen := make(map[string]bool)
	for _, sec := range prompts.Sections(out.FinalPromptText) {
		if seen[sec.Key] {
			continue
		}
		seen[sec.Key] = true

		v := doc[sec.Key]
		var body string
		if v.IsList() {
			var items []string
			for _, l := range v.Lines {
				items = append(items, "  • "+l)
			}
			body = strings.Join(items, "\n")
		} else {
			body = "  " + wrapText(v.Text, width-2)
		}
		parts = append(parts, styleSelected.Render(sec.Label)+"\n"+body)
	}
	return strings.Join(parts, "\n\n")
}

// resultPayload is what copy and save export from the result view.
func (a *App) resultPayload() (export.Payload, error) {
	out := a.state.output
	switch a.state.resultMode {
	case modeJSON:
		return export.JSON(json.RawMessage(out.PrettyJSON()))
	case modeStructured:
		return export.JSON(generate.StructuredView(out))
	}
	return export.Text(out.FinalPromptText), nil
}

func (a *App) renderResult() string {
	var b strings.Builder
	s := a.state
	out := s.output
	if out == nil {
		return ""
	}
	lang := a.lang()

	head := out.Meta.Type.Label(lang)
	if len(out.Meta.Type.Subtypes()) > 1 {
		head += " / " + generate.SubtypeLabel(out.Meta.Subtype, lang)
	}
	title := styleTitle.Render(head)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n")
	if !out.Meta.CreatedAt.IsZero() {
		when := styleSubtitle.Render(out.Meta.CreatedAt.Local().Format("2006-01-02 15:04"))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, when))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.modeTabs(s.resultMode, true)))
	b.WriteString("\n")

	box := styleBox.Copy().
		Width(s.viewport.Width + 2).
		BorderForeground(colorSecondary).
		Render(s.viewport.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, box))
	b.WriteString("\n")

	scroll := styleSubtitle.Render(fmt.Sprintf("%3.f%%  %s", s.viewport.ScrollPercent()*100, usageLine(out.FinalPromptText, s.config.Model)))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, scroll))
	b.WriteString("\n\n")

	hints := a.t(
		"[t] Chế độ  [c] Sao chép  [w] Lưu file  [n] Mới  [Esc] Trang chủ",
		"[t] Mode  [c] Copy  [w] Save file  [n] New  [Esc] Home",
	)
	if out.Meta.Type == generate.TaskVideo {
		hints = a.t("[x] Nối video  ", "[x] Extend video  ") + hints
	}
	b.WriteString(a.footer(hints))

	return b.String()
}

func (a *App) handleResultKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	switch {
	case key.Matches(msg, keys.Back):
		a.view = viewHome
		return nil
	case key.Matches(msg, keys.Help):
		a.openHelp()
		return nil
	case msg.String() == "t", key.Matches(msg, keys.Tab):
		s.resultMode = (s.resultMode + 1) % 3
		a.setResultContent()
		return nil
	case msg.String() == "c":
		p, err := a.resultPayload()
		if err != nil {
			return a.setStatus(err.Error(), true)
		}
		return a.copyPayload(p)
	case msg.String() == "w":
		p, err := a.resultPayload()
		if err != nil {
			return a.setStatus(err.Error(), true)
		}
		return a.writePayload(strings.ToLower(string(s.output.Meta.Type)), p)
	case msg.String() == "x":
		req, ok := generate.ExtendVideo(s.output, a.lang())
		if !ok {
			return nil
		}
		// Open the Extend form prefilled so the user can describe what happens next.
		s.task = req.Task
		s.subtype = req.Subtype
		s.taskForm = newForm(generate.Fields(req.Task, req.Subtype), req.Inputs, a.lang())
		a.view = viewTaskForm
		return s.taskForm.setFocus(len(s.taskForm.fields) - 1)
	case msg.String() == "n":
		return a.openTaskForm()
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}
