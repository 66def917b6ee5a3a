package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/config"
)

const logo = `
┏━┓┏━┓┏━┓┏┳┓┏━┓╺┳╸┏━╸┏━┓┏━┓┏━╸╺┳╸
┣━┛┣┳┛┃ ┃┃┃┃┣━┛ ┃ ┃  ┣┳┛┣━┫┣╸  ┃
╹  ╹┗╸┗━┛╹ ╹╹   ╹ ┗━╸╹┗╸╹ ╹╹   ╹
`

type homeItem struct {
	vi, en   string
	shortcut string
	target   view
}

// viewHome as a target means quit.
var homeItems = []homeItem{
	{"Thư viện mẫu", "Template library", "l", viewLibrary},
	{"Tạo prompt theo hướng dẫn", "Guided prompt builder", "g", viewTaskForm},
	{"Lịch sử", "History", "r", viewHistory},
	{"Cài đặt", "Settings", "s", viewSettings},
	{"Trợ giúp", "Help", "?", viewHelp},
	{"Thoát", "Quit", "q", viewHome},
}

func (a *App) renderHome() string {
	// Logo
	logoRendered := styleLogo.Render(logo)

	// Subtitle
	subtitle := styleSubtitle.Render(a.t("Trợ lý viết prompt cho AI", "Prompt engineering assistant"))

	// Menu
	var lines []string
	for i, item := range homeItems {
		label := fmt.Sprintf("[%s] %s", item.shortcut, a.t(item.vi, item.en))
		if i == a.state.homeSelected {
			lines = append(lines, styleSelected.Render("> "+label))
		} else {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorText).Render("  "+label))
		}
	}
	menu := styleBox.Copy().Width(40).Render(strings.Join(lines, "\n"))

	// Provider line
	info := a.state.config.Provider
	if p := config.GetProvider(info); p != nil {
		info = p.Name
	}
	if a.state.config.Model != "" {
		info += " / " + a.state.config.Model
	}
	if !a.state.config.HasAPIKey() {
		if p := config.GetProvider(a.state.config.Provider); p != nil && p.NeedsAPIKey {
			info += "  " + a.t("(chưa có API key)", "(no API key)")
		}
	}
	count := ""
	if a.deps.Catalog != nil {
		count = fmt.Sprintf(a.t("%d mẫu", "%d templates"), a.deps.Catalog.Count())
	}
	providerLine := styleSubtitle.Render(strings.TrimSpace(info + "  " + count))

	// Combine main content
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		logoRendered,
		subtitle,
		"",
		menu,
		"",
		providerLine,
	)

	// Center content on screen (leave room for status bar)
	mainArea := lipgloss.Place(
		a.width,
		max(a.height-3, 0),
		lipgloss.Center,
		lipgloss.Center,
		content,
	)

	statusLine := a.footer(a.t("[j/k] Di chuyển  [Enter] Chọn  [Ctrl+C] Thoát", "[j/k] Navigate  [Enter] Select  [Ctrl+C] Quit"))

	return lipgloss.JoinVertical(lipgloss.Left, mainArea, statusLine)
}

func (a *App) handleHomeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Up):
		if a.state.homeSelected > 0 {
			a.state.homeSelected--
		}
		return nil
	case key.Matches(msg, keys.Down):
		if a.state.homeSelected < len(homeItems)-1 {
			a.state.homeSelected++
		}
		return nil
	case key.Matches(msg, keys.Enter):
		return a.openHomeItem(homeItems[a.state.homeSelected])
	case key.Matches(msg, keys.Back):
		return nil
	}

	for i, item := range homeItems {
		if msg.String() == item.shortcut {
			a.state.homeSelected = i
			return a.openHomeItem(item)
		}
	}
	return nil
}

func (a *App) openHomeItem(item homeItem) tea.Cmd {
	switch item.target {
	case viewLibrary:
		return a.openLibrary()
	case viewTaskForm:
		return a.openTaskForm()
	case viewHistory:
		return a.openHistory()
	case viewSettings:
		return a.openSettings()
	case viewHelp:
		a.openHelp()
		return nil
	}
	a.quitting = true
	return tea.Quit
}
