package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/config"
)

func (a *App) renderSetup() string {
	switch a.state.setupStep {
	case 0:
		return a.renderProviderSelection()
	case 1:
		return a.renderAPIKeyEntry()
	default:
		return ""
	}
}

func (a *App) renderProviderSelection() string {
	var b strings.Builder

	// Header
	header := styleLogo.Render(logo)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, header))
	b.WriteString("\n\n")

	// Title
	title := lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true).
		Render(a.t("Chào mừng! Chọn nhà cung cấp AI:", "Welcome! Choose your AI provider:"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Provider list
	var providerLines []string
	for i, p := range config.Providers {
		var line string
		cursor := "  "
		if i == a.state.selectedProvider {
			cursor = "> "
			line = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true).
				Render(fmt.Sprintf("%s[x] %-16s %s", cursor, p.Name, p.Description))
		} else {
			line = lipgloss.NewStyle().
				Foreground(colorMuted).
				Render(fmt.Sprintf("%s[ ] %-16s %s", cursor, p.Name, p.Description))
		}
		providerLines = append(providerLines, line)
	}

	providerBox := styleBox.Copy().
		Width(min(70, a.width-4)).
		Render(strings.Join(providerLines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, providerBox))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t("[j/k] Di chuyển  [Enter] Chọn", "[j/k] Navigate  [Enter] Select")))

	return a.centerVertically(b.String())
}

func (a *App) renderAPIKeyEntry() string {
	var b strings.Builder

	provider := config.Providers[a.state.selectedProvider]

	// Header
	header := styleLogo.Render(logo)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, header))
	b.WriteString("\n\n")

	// Title
	title := lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true).
		Render(fmt.Sprintf(a.t("Nhập API key %s:", "Enter your %s API key:"), provider.Name))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	if a.state.pending != nil {
		note := lipgloss.NewStyle().Foreground(colorHighlight).
			Render(a.t("Cần API key để tạo prompt. Yêu cầu sẽ chạy lại sau khi lưu.", "An API key is needed to generate. Your request resumes after saving."))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, note))
		b.WriteString("\n\n")
	}

	// Signup link
	if provider.SignupURL != "" {
		link := styleSubtitle.Render(fmt.Sprintf(a.t("Lấy key tại: %s", "Get one at: %s"), provider.SignupURL))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, link))
		b.WriteString("\n\n")
	}

	// Input
	inputBox := styleBox.Copy().
		Width(60).
		BorderForeground(colorSecondary).
		Render(a.state.apiKeyInput.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, inputBox))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t("[Enter] Tiếp tục  [Esc] Quay lại", "[Enter] Continue  [Esc] Back")))

	return a.centerVertically(b.String())
}

func (a *App) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	switch a.state.setupStep {
	case 0: // Provider selection
		switch {
		case key.Matches(msg, keys.Up):
			if a.state.selectedProvider > 0 {
				a.state.selectedProvider--
			}
		case key.Matches(msg, keys.Down):
			if a.state.selectedProvider < len(config.Providers)-1 {
				a.state.selectedProvider++
			}
		case key.Matches(msg, keys.Back):
			if !a.state.needsSetup {
				a.view = viewHome
			}
		case key.Matches(msg, keys.Enter):
			provider := config.Providers[a.state.selectedProvider]
			a.state.config.Provider = provider.ID
			a.state.config.Model = provider.DefaultModel

			if provider.NeedsAPIKey {
				return a.openKeyEntry()
			}
			// Skip to save
			return a.finishSetup()
		}

	case 1: // API key entry
		switch {
		case key.Matches(msg, keys.Back):
			// Go back to provider selection
			a.state.setupStep = 0
			a.state.apiKeyInput.Reset()
			a.state.apiKeyInput.Blur()
			return nil
		case key.Matches(msg, keys.Enter):
			k := strings.TrimSpace(a.state.apiKeyInput.Value())
			if k == "" {
				return nil
			}
			a.state.config.SetAPIKey(k)
			a.state.apiKeyInput.Reset()
			return a.finishSetup()
		}
		var cmd tea.Cmd
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
		return cmd
	}

	return nil
}

// openKeyEntry shows the API key step for the configured provider.
func (a *App) openKeyEntry() tea.Cmd {
	a.state.selectedProvider = max(config.ProviderIndex(a.state.config.Provider), 0)
	a.state.setupStep = 1
	a.state.apiKeyInput.Reset()
	a.view = viewSetup
	a.state.apiKeyInput.Focus()
	return textinput.Blink
}

func (a *App) finishSetup() tea.Cmd {
	store := a.deps.Store
	cfg := *a.state.config
	a.state.setupStep = 0
	a.state.apiKeyInput.Blur()
	return func() tea.Msg {
		if store != nil {
			if err := store.Save(&cfg); err != nil {
				return setupErrorMsg{err}
			}
		}
		return setupCompleteMsg{}
	}
}

func (a *App) centerVertically(content string) string {
	lines := strings.Count(content, "\n") + 1
	padding := (a.height - lines) / 2
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat("\n", padding) + content
}

// footer renders the transient status message, if any, above the key hints.
func (a *App) footer(hints string) string {
	var b strings.Builder
	if a.state.status != "" {
		style := lipgloss.NewStyle().Foreground(colorSuccess)
		if a.state.statusErr {
			style = lipgloss.NewStyle().Foreground(colorError)
		}
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, style.Render(truncate(a.state.status, max(a.width-4, 10)))))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleStatusBar.Render(hints)))
	return b.String()
}
