package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderTemplateForm() string {
	var b strings.Builder
	s := a.state
	if s.template == nil || s.form == nil {
		return ""
	}
	width := min(80, max(a.width-4, 20))

	title := styleTitle.Render(s.template.DisplayTitle(a.lang()))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n")
	if desc := s.template.DisplayDescription(a.lang()); desc != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSubtitle.Render(wrapText(desc, width))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	formBox := styleBox.Copy().
		Width(width).
		BorderForeground(colorSecondary).
		Render(s.form.view(width))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, formBox))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t(
		"[Tab/↑↓] Trường  [←/→] Đổi lựa chọn  [Enter] Tiếp  [Ctrl+P] Xem trước  [Esc] Quay lại",
		"[Tab/↑↓] Field  [←/→] Change choice  [Enter] Next  [Ctrl+P] Preview  [Esc] Back",
	)))

	return a.centerVertically(b.String())
}

func (a *App) handleTemplateFormKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	switch {
	case key.Matches(msg, keys.Back):
		a.view = viewLibrary
		return nil
	case key.Matches(msg, keys.Preview):
		return a.openPreview()
	case key.Matches(msg, keys.Enter):
		if s.form.atLast() {
			return a.openPreview()
		}
		return s.form.setFocus(s.form.focus + 1)
	}
	return s.form.update(msg)
}
