package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/generate"
)

func (a *App) openTaskForm() tea.Cmd {
	a.view = viewTaskForm
	return a.state.taskForm.setFocus(a.state.taskForm.focus)
}

// selectTask switches the guided form to task t and subtype sub. Values
// typed into fields that exist in both forms are kept.
func (a *App) selectTask(t generate.Task, sub string) tea.Cmd {
	s := a.state
	prev := s.taskForm.values()
	s.task = t
	s.subtype = sub

	values := generate.FieldDefaults(t, sub)
	for _, f := range generate.Fields(t, sub) {
		if v, ok := prev[f.Key]; ok && v != "" {
			values[f.Key] = v
		}
	}
	s.taskForm = newForm(generate.Fields(t, sub), values, a.lang())
	return s.taskForm.setFocus(0)
}

func (a *App) renderTaskForm() string {
	var b strings.Builder
	s := a.state
	lang := a.lang()
	width := min(80, max(a.width-4, 20))

	title := styleTitle.Render(a.t("Tạo prompt theo hướng dẫn", "Guided Prompt Builder"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Task tabs
	var tabs []string
	for _, t := range generate.Tasks {
		if t == s.task {
			tabs = append(tabs, styleTabActive.Render(t.Label(lang)))
		} else {
			tabs = append(tabs, styleTab.Render(t.Label(lang)))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, strings.Join(tabs, " ")))
	b.WriteString("\n")

	// Subtype tabs
	if subs := s.task.Subtypes(); len(subs) > 1 {
		var subTabs []string
		for _, sub := range subs {
			label := generate.SubtypeLabel(sub, lang)
			if sub == s.subtype {
				subTabs = append(subTabs, lipgloss.NewStyle().Foreground(colorSecondary).Bold(true).Underline(true).Render(label))
			} else {
				subTabs = append(subTabs, styleSubtitle.Render(label))
			}
		}
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, strings.Join(subTabs, "   ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	formBox := styleBox.Copy().
		Width(width).
		BorderForeground(colorSecondary).
		Render(s.taskForm.view(width))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, formBox))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t(
		"[Ctrl+T] Loại  [Ctrl+O] Chế độ  [Tab/↑↓] Trường  [Ctrl+G] Tạo  [Esc] Quay lại",
		"[Ctrl+T] Task  [Ctrl+O] Mode  [Tab/↑↓] Field  [Ctrl+G] Generate  [Esc] Back",
	)))

	return a.centerVertically(b.String())
}

func (a *App) handleTaskFormKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	switch {
	case key.Matches(msg, keys.Back):
		a.view = viewHome
		return nil
	case key.Matches(msg, keys.NextTask):
		i := 0
		for j, t := range generate.Tasks {
			if t == s.task {
				i = j
			}
		}
		next := generate.Tasks[(i+1)%len(generate.Tasks)]
		return a.selectTask(next, generate.DefaultSubtype(next))
	case key.Matches(msg, keys.NextSub):
		subs := s.task.Subtypes()
		i := 0
		for j, sub := range subs {
			if sub == s.subtype {
				i = j
			}
		}
		return a.selectTask(s.task, subs[(i+1)%len(subs)])
	case key.Matches(msg, keys.Generate):
		return a.submitTask()
	case key.Matches(msg, keys.Enter):
		if s.taskForm.atLast() {
			return a.submitTask()
		}
		return s.taskForm.setFocus(s.taskForm.focus + 1)
	}
	return s.taskForm.update(msg)
}

func (a *App) submitTask() tea.Cmd {
	s := a.state
	if missing := s.taskForm.missing(); len(missing) > 0 {
		return a.setStatus(a.t("Cần điền: ", "Required: ")+strings.Join(missing, ", "), true)
	}
	req := &generate.Request{
		Task:     s.task,
		Subtype:  s.subtype,
		Inputs:   s.taskForm.values(),
		Language: a.lang(),
	}
	if err := req.Validate(); err != nil {
		return a.setStatus(err.Error(), true)
	}
	if err := req.CheckProvider(a.state.config.Provider); err != nil {
		return a.setStatus(err.Error(), true)
	}
	return a.startGeneration(req)
}
