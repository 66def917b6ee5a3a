package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/generate"
)

func (a *App) openHistory() tea.Cmd {
	a.state.confirmClear = false
	a.view = viewHistory
	return a.loadHistory()
}

func (a *App) renderHistory() string {
	var b strings.Builder
	s := a.state
	width := min(80, max(a.width-4, 20))

	title := styleTitle.Render(a.t("Lịch sử", "History"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	var lines []string
	if a.deps.History == nil {
		lines = append(lines, styleSubtitle.Render(a.t("Lịch sử không khả dụng", "History is unavailable")))
	} else if len(s.historyItems) == 0 {
		lines = append(lines, styleSubtitle.Render(a.t("Chưa có prompt nào", "No prompts yet")))
	}
	for i, item := range s.historyItems {
		task := generate.Task(item.Type)
		kind := task.Label(a.lang())
		if len(task.Subtypes()) > 1 {
			kind += "/" + generate.SubtypeLabel(item.Subtype, a.lang())
		}
		when := item.CreatedAt.Local().Format("01-02 15:04")
		text := fmt.Sprintf("%s  %-24s %s", when, truncate(kind, 24), truncate(item.Title, max(width-48, 10)))
		if i == s.historySelected {
			lines = append(lines, styleSelected.Render("> "+text))
		} else {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorText).Render("  "+text))
		}
	}

	listBox := styleBox.Copy().Width(width).Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n\n")

	hints := a.t("[Enter] Mở  [d] Xoá  [D] Xoá hết  [Esc] Quay lại", "[Enter] Open  [d] Delete  [D] Clear all  [Esc] Back")
	if s.confirmClear {
		hints = a.t("Xoá toàn bộ lịch sử? [y] Có  [n] Không", "Clear all history? [y] Yes  [n] No")
	}
	b.WriteString(a.footer(hints))

	return a.centerVertically(b.String())
}

func (a *App) handleHistoryKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	store := a.deps.History

	if s.confirmClear {
		s.confirmClear = false
		if msg.String() != "y" || store == nil {
			return nil
		}
		return a.historyOp(func(ctx context.Context) error { return store.Clear(ctx) },
			a.t("Đã xoá lịch sử", "History cleared"))
	}

	switch {
	case key.Matches(msg, keys.Back):
		a.view = viewHome
	case key.Matches(msg, keys.Help):
		a.openHelp()
	case key.Matches(msg, keys.Up):
		if s.historySelected > 0 {
			s.historySelected--
		}
	case key.Matches(msg, keys.Down):
		if s.historySelected < len(s.historyItems)-1 {
			s.historySelected++
		}
	case key.Matches(msg, keys.Enter):
		if s.historySelected >= len(s.historyItems) {
			return nil
		}
		out, err := generate.OutputFromHistory(&s.historyItems[s.historySelected])
		if err != nil {
			return a.setStatus(err.Error(), true)
		}
		s.output = out
		s.resultMode = modeText
		a.setResultContent()
		a.view = viewResult
	case msg.String() == "d":
		if store == nil || s.historySelected >= len(s.historyItems) {
			return nil
		}
		id := s.historyItems[s.historySelected].ID
		return a.historyOp(func(ctx context.Context) error { return store.Delete(ctx, id) },
			a.t("Đã xoá", "Deleted"))
	case msg.String() == "D":
		if len(s.historyItems) > 0 {
			s.confirmClear = true
		}
	}
	return nil
}

// historyOp runs op against the store, then reloads the list.
func (a *App) historyOp(op func(ctx context.Context) error, done string) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := op(ctx); err != nil {
				return statusMsg{text: err.Error(), isErr: true}
			}
			return statusMsg{text: done}
		},
		a.loadHistory(),
	)
}
