package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func helpLine(b key.Binding) string {
	h := b.Help()
	return fmt.Sprintf("  %-12s %s", h.Key, h.Desc)
}

func (a *App) renderHelp() string {
	var b strings.Builder

	// Title
	title := styleTitle.Render(a.t("Trợ giúp", "Help"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Overview
	overview := []string{
		a.t("  Thư viện: chọn mẫu, điền biến, xem trước và sao chép.", "  Library: pick a template, fill its variables, preview and copy."),
		a.t("  Hướng dẫn: điền form, AI hoàn thiện prompt cho bạn.", "  Guided: fill a form and the model completes the prompt."),
		a.t("  Mục dạng ***NHÃN*** được tách thành chế độ Cấu trúc.", "  ***LABEL*** lines split a prompt into the Structured view."),
	}
	if a.deps.Catalog != nil && a.deps.Catalog.UserDir() != "" {
		overview = append(overview, a.t("  Mẫu riêng (YAML): ", "  Your YAML templates: ")+a.deps.Catalog.UserDir())
	}

	overviewBox := styleBox.Copy().
		Width(min(76, max(a.width-4, 20))).
		Render(strings.Join(overview, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, overviewBox))
	b.WriteString("\n\n")

	// Keyboard shortcuts
	shortcuts := []string{
		helpLine(keys.Quit),
		helpLine(keys.Back),
		helpLine(keys.Help),
		helpLine(keys.Up),
		helpLine(keys.Down),
		helpLine(keys.Tab),
		helpLine(keys.Preview),
		helpLine(keys.Generate),
		helpLine(keys.NextTask),
		helpLine(keys.NextSub),
		helpLine(keys.PageUp),
		helpLine(keys.PageDown),
		"  /            " + a.t("tìm mẫu", "search templates"),
		"  f            " + a.t("yêu thích", "favourite"),
		"  c            " + a.t("sao chép", "copy"),
		"  w            " + a.t("lưu file", "save to file"),
		"  t            " + a.t("đổi chế độ hiển thị", "switch output mode"),
	}

	shortcutsTitle := styleSubtitle.Render(a.t("Phím tắt", "Keyboard Shortcuts"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, shortcutsTitle))
	b.WriteString("\n\n")

	shortcutsBox := styleBox.Copy().
		Width(50).
		Render(strings.Join(shortcuts, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, shortcutsBox))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t("[Esc] Quay lại", "[Esc] Back")))

	return a.centerVertically(b.String())
}
