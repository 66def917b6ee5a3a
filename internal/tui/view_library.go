package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/catalog"
	"github.com/sant0-9/promptcraft/internal/export"
	"github.com/sant0-9/promptcraft/internal/generate"
)

// libraryTabs returns the tab labels. Tab 0 lists every category.
func (a *App) libraryTabs() []string {
	tabs := []string{a.t("Tất cả", "All")}
	for _, c := range catalog.Categories() {
		tabs = append(tabs, c.Label(a.lang()))
	}
	return tabs
}

// refreshTemplates recomputes the visible template list from the catalog,
// the current tab and the search query.
func (a *App) refreshTemplates() {
	s := a.state
	query := strings.TrimSpace(s.searchInput.Value())

	var list []*catalog.Template
	switch {
	case s.libraryTab == 0 && query == "":
		list = a.deps.Catalog.All()
	case s.libraryTab == 0:
		list = a.deps.Catalog.Search(query)
	default:
		cats := catalog.Categories()
		list = a.deps.Catalog.Filter(cats[s.libraryTab-1], query)
	}
	s.templates = catalog.SortFavoritesFirst(list, s.config.IsFavorite)

	if s.librarySelected >= len(s.templates) {
		s.librarySelected = max(len(s.templates)-1, 0)
	}
}

func (a *App) openLibrary() tea.Cmd {
	a.refreshTemplates()
	a.view = viewLibrary
	return nil
}

func (a *App) selectedTemplate() *catalog.Template {
	s := a.state
	if s.librarySelected < 0 || s.librarySelected >= len(s.templates) {
		return nil
	}
	return s.templates[s.librarySelected]
}

func (a *App) renderLibrary() string {
	var b strings.Builder
	s := a.state
	lang := a.lang()
	width := min(90, max(a.width-4, 20))

	// Title
	title := styleTitle.Render(a.t("Thư viện mẫu", "Template Library"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Tabs
	var tabs []string
	for i, label := range a.libraryTabs() {
		if i == s.libraryTab {
			tabs = append(tabs, styleTabActive.Render(label))
		} else {
			tabs = append(tabs, styleTab.Render(label))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, strings.Join(tabs, " ")))
	b.WriteString("\n\n")

	// Search
	if s.searching || s.searchInput.Value() != "" {
		search := styleBox.Copy().
			Width(width).
			BorderForeground(colorSecondary).
			Render("/ " + s.searchInput.View())
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, search))
		b.WriteString("\n")
	}

	// List
	var lines []string
	if len(s.templates) == 0 {
		lines = append(lines, styleSubtitle.Render(a.t("Không tìm thấy mẫu nào", "No templates found")))
	}

	// Leave room for the header, footer and description.
	visible := max(a.height-16, 3)
	start := 0
	if s.librarySelected >= visible {
		start = s.librarySelected - visible + 1
	}
	end := min(start+visible, len(s.templates))

	for i := start; i < end; i++ {
		t := s.templates[i]
		star := "  "
		if s.config.IsFavorite(t.ID) {
			star = lipgloss.NewStyle().Foreground(colorHighlight).Render("★ ")
		}
		label := truncate(t.DisplayTitle(lang), width-24)
		cat := styleSubtitle.Render(fmt.Sprintf("%-10s", t.Category.Label(lang)))
		if !t.Builtin() {
			cat = styleSubtitle.Render(fmt.Sprintf("%-10s", a.t("của bạn", "yours")))
		}

		var line string
		if i == s.librarySelected {
			line = star + styleSelected.Render("> "+label)
		} else {
			line = star + lipgloss.NewStyle().Foreground(colorText).Render("  "+label)
		}
		gap := width - 6 - lipgloss.Width(line) - lipgloss.Width(cat)
		lines = append(lines, line+strings.Repeat(" ", max(gap, 1))+cat)
	}
	if len(s.templates) > visible {
		lines = append(lines, styleSubtitle.Render(fmt.Sprintf("  %d/%d", s.librarySelected+1, len(s.templates))))
	}

	listBox := styleBox.Copy().Width(width).Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n")

	// Description of the selected template
	if t := a.selectedTemplate(); t != nil {
		desc := t.DisplayDescription(lang)
		if desc == "" {
			desc = t.DisplayTitle(lang)
		}
		d := styleSubtitle.Render(wrapText(desc, width-2))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, d))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	hints := a.t(
		"[←/→] Danh mục  [/] Tìm  [Enter] Mở  [f] Yêu thích  [c] Sao chép nhanh  [Esc] Quay lại",
		"[←/→] Category  [/] Search  [Enter] Open  [f] Favourite  [c] Quick copy  [Esc] Back",
	)
	if s.searching {
		hints = a.t("[Enter] Xong  [Esc] Xoá tìm kiếm", "[Enter] Done  [Esc] Clear search")
	}
	b.WriteString(a.footer(hints))

	return b.String()
}

func (a *App) handleLibraryKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state

	if s.searching {
		switch {
		case key.Matches(msg, keys.Back):
			s.searching = false
			s.searchInput.Reset()
			s.searchInput.Blur()
			a.refreshTemplates()
			return nil
		case key.Matches(msg, keys.Enter):
			s.searching = false
			s.searchInput.Blur()
			return nil
		case msg.String() == "up" || msg.String() == "down":
			// fall through to list navigation
		default:
			var cmd tea.Cmd
			s.searchInput, cmd = s.searchInput.Update(msg)
			s.librarySelected = 0
			a.refreshTemplates()
			return cmd
		}
	}

	switch {
	case key.Matches(msg, keys.Back):
		if s.searchInput.Value() != "" {
			s.searchInput.Reset()
			a.refreshTemplates()
			return nil
		}
		a.view = viewHome
	case key.Matches(msg, keys.Help):
		a.openHelp()
	case key.Matches(msg, keys.Up):
		if s.librarySelected > 0 {
			s.librarySelected--
		}
	case key.Matches(msg, keys.Down):
		if s.librarySelected < len(s.templates)-1 {
			s.librarySelected++
		}
	case key.Matches(msg, keys.Left), key.Matches(msg, keys.ShiftTab):
		n := len(catalog.Categories()) + 1
		s.libraryTab = (s.libraryTab - 1 + n) % n
		s.librarySelected = 0
		a.refreshTemplates()
	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Tab):
		n := len(catalog.Categories()) + 1
		s.libraryTab = (s.libraryTab + 1) % n
		s.librarySelected = 0
		a.refreshTemplates()
	case msg.String() == "/":
		s.searching = true
		return s.searchInput.Focus()
	case key.Matches(msg, keys.Enter):
		if t := a.selectedTemplate(); t != nil {
			return a.openTemplate(t)
		}
	case msg.String() == "f":
		if t := a.selectedTemplate(); t != nil {
			fav := s.config.ToggleFavorite(t.ID)
			a.refreshTemplates()
			// Keep the cursor on the same template after re-sorting.
			for i, x := range s.templates {
				if x.ID == t.ID {
					s.librarySelected = i
				}
			}
			text := a.t("Đã bỏ yêu thích", "Removed from favourites")
			if fav {
				text = a.t("Đã thêm vào yêu thích", "Added to favourites")
			}
			return tea.Batch(a.saveConfig(), a.setStatus(text, false))
		}
	case msg.String() == "c":
		if t := a.selectedTemplate(); t != nil {
			return a.copyPayload(export.Text(generate.QuickCopy(t).Text))
		}
	}
	return nil
}

// copyPayload puts p on the clipboard and reports the result in the status line.
func (a *App) copyPayload(p export.Payload) tea.Cmd {
	if err := export.Copy(a.deps.Clipboard, p); err != nil {
		return a.setStatus(err.Error(), true)
	}
	return a.setStatus(a.t("Đã sao chép", "Copied to clipboard"), false)
}

// openTemplate starts filling t. Templates without variables go straight
// to the preview.
func (a *App) openTemplate(t *catalog.Template) tea.Cmd {
	s := a.state
	s.template = t
	s.form = newForm(t.Variables, nil, a.lang())
	if len(t.Variables) == 0 {
		return a.openPreview()
	}
	a.view = viewTemplateForm
	return textinput.Blink
}
