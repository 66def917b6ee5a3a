package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/generate"
)

func stageLabel(st generate.Stage, lang string) string {
	switch st {
	case generate.StageBuilding:
		return localize(lang, "Chuẩn bị yêu cầu", "Building request")
	case generate.StageWaiting:
		return localize(lang, "Chờ lượt gọi", "Waiting for a slot")
	case generate.StageCalling:
		return localize(lang, "Gọi mô hình", "Calling the model")
	case generate.StageValidating:
		return localize(lang, "Kiểm tra kết quả", "Validating the reply")
	case generate.StageSaving:
		return localize(lang, "Lưu lịch sử", "Saving to history")
	}
	return st.String()
}

func (a *App) renderGenerating() string {
	var b strings.Builder
	s := a.state

	title := styleTitle.Render(a.t("Đang tạo prompt", "Generating prompt"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n")
	if s.lastReq != nil {
		sub := s.lastReq.Task.Label(a.lang())
		if len(s.lastReq.Task.Subtypes()) > 1 {
			sub += " / " + generate.SubtypeLabel(s.lastReq.Subtype, a.lang())
		}
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSubtitle.Render(sub)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	current := -1
	if s.progress != nil {
		current = s.progress.StageIndex
	}

	var lines []string
	for i, st := range generate.Stages {
		label := stageLabel(st, a.lang())
		switch {
		case i < current:
			lines = append(lines, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ "+label))
		case i == current:
			lines = append(lines, lipgloss.NewStyle().Foreground(colorText).Bold(true).Render(s.spinner.View()+label))
		default:
			lines = append(lines, styleSubtitle.Render("  "+label))
		}
	}

	stagesBox := styleBox.Copy().
		Width(min(50, max(a.width-4, 20))).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, stagesBox))
	b.WriteString("\n\n")

	var info []string
	if s.progress != nil && s.progress.Message != "" {
		info = append(info, s.progress.Message)
	}
	if !s.genStart.IsZero() {
		info = append(info, fmt.Sprintf("%.1fs", time.Since(s.genStart).Seconds()))
	}
	if len(info) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSubtitle.Render(strings.Join(info, "  "))))
		b.WriteString("\n\n")
	}

	b.WriteString(a.footer(a.t("[Esc] Huỷ", "[Esc] Cancel")))

	return a.centerVertically(b.String())
}

func (a *App) handleGeneratingKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Back) && a.state.cancel != nil {
		a.state.cancel()
	}
	return nil
}
