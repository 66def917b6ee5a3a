package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/config"
	"github.com/sant0-9/promptcraft/internal/export"
)

// Rows of the main settings list.
const (
	settingProvider = iota
	settingModel
	settingAPIKey
	settingLanguage
	settingTheme
	settingOutput
	settingHighlight
	settingClearKey
	settingCount
)

func (a *App) openSettings() tea.Cmd {
	a.state.settingsMode = ""
	a.state.settingsSelected = 0
	a.view = viewSettings
	return nil
}

func (a *App) renderSettings() string {
	switch a.state.settingsMode {
	case "provider":
		return a.renderSettingsProvider()
	case "model":
		return a.renderSettingsModel()
	case "apikey":
		return a.renderSettingsAPIKey()
	default:
		return a.renderSettingsMain()
	}
}

func onOff(lang string, on bool) string {
	if on {
		return localize(lang, "Bật", "On")
	}
	return localize(lang, "Tắt", "Off")
}

func (a *App) settingRow(i int) (string, string) {
	cfg := a.state.config
	lang := a.lang()
	switch i {
	case settingProvider:
		name := cfg.Provider
		if p := config.GetProvider(cfg.Provider); p != nil {
			name = p.Name
		}
		return a.t("Nhà cung cấp", "Provider"), name
	case settingModel:
		return a.t("Mô hình", "Model"), cfg.Model
	case settingAPIKey:
		k := cfg.MaskedAPIKey()
		if k == "" {
			k = a.t("Chưa đặt", "Not set")
		}
		return "API key", k
	case settingLanguage:
		if cfg.Settings.Language == config.LangEN {
			return a.t("Ngôn ngữ", "Language"), "English"
		}
		return a.t("Ngôn ngữ", "Language"), "Tiếng Việt"
	case settingTheme:
		if cfg.Settings.Theme == config.ThemeDark {
			return a.t("Giao diện", "Theme"), a.t("Tối", "Dark")
		}
		return a.t("Giao diện", "Theme"), a.t("Sáng", "Light")
	case settingOutput:
		return a.t("Định dạng mặc định", "Default output"), strings.ToUpper(cfg.Settings.DefaultOutput)
	case settingHighlight:
		return a.t("Tô sáng giả định AI", "Highlight AI assumptions"), onOff(lang, cfg.Settings.HighlightAI)
	case settingClearKey:
		return a.t("Xoá API key", "Clear API key"), ""
	}
	return "", ""
}

func (a *App) renderSettingsMain() string {
	var b strings.Builder

	// Title
	title := styleTitle.Render(a.t("Cài đặt", "Settings"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	var lines []string
	for i := 0; i < settingCount; i++ {
		label, value := a.settingRow(i)
		text := fmt.Sprintf("%-26s %s", label, value)
		if i == a.state.settingsSelected {
			lines = append(lines, styleSelected.Render("> "+text))
		} else {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorText).Render("  "+text))
		}
	}

	settingsBox := styleBox.Copy().
		Width(60).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, settingsBox))
	b.WriteString("\n\n")

	// Environment and paths
	var info []string
	if a.state.config.FromEnv() {
		info = append(info, a.t("Một số giá trị lấy từ biến môi trường và không được lưu.", "Some values come from the environment and are not saved."))
	}
	if !export.Available() {
		info = append(info, a.t("Không có clipboard, hãy dùng [w] để lưu file.", "No clipboard found, use [w] to save to a file."))
	}
	if p, err := config.ConfigPath(); err == nil {
		info = append(info, "config: "+p)
	}
	if a.deps.Catalog != nil && a.deps.Catalog.UserDir() != "" {
		info = append(info, a.t("mẫu riêng: ", "your templates: ")+a.deps.Catalog.UserDir())
	}
	for _, line := range info {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSubtitle.Render(line)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(a.footer(a.t("[j/k] Di chuyển  [Enter/←→] Đổi  [Esc] Quay lại", "[j/k] Navigate  [Enter/←→] Change  [Esc] Back")))

	return a.centerVertically(b.String())
}

func (a *App) renderSettingsProvider() string {
	var b strings.Builder

	title := styleTitle.Render(a.t("Chọn nhà cung cấp", "Select Provider"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	var lines []string
	for i, p := range config.Providers {
		cursor := "  "
		if i == a.state.settingsSelected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-16s %s", cursor, p.Name, styleSubtitle.Render(p.Description))
		if i == a.state.settingsSelected {
			line = styleSelected.Render(fmt.Sprintf("%s%-16s", cursor, p.Name)) + " " + styleSubtitle.Render(p.Description)
		}
		lines = append(lines, line)
	}

	listBox := styleBox.Copy().
		Width(60).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t("[j/k] Di chuyển  [Enter] Chọn  [Esc] Huỷ", "[j/k] Navigate  [Enter] Select  [Esc] Cancel")))

	return a.centerVertically(b.String())
}

func (a *App) renderSettingsModel() string {
	var b strings.Builder

	title := styleTitle.Render(a.t("Chọn mô hình", "Select Model"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	var lines []string
	for i, m := range a.providerModels() {
		cursor := "  "
		if i == a.state.settingsSelected {
			cursor = "> "
		}
		line := cursor + m
		if m == a.state.config.Model {
			line += " ✓"
		}
		if i == a.state.settingsSelected {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, styleSubtitle.Render(a.t(
			"Nhà cung cấp này không có danh sách mô hình. Đặt PROMPTCRAFT_MODEL hoặc sửa config.",
			"This provider has no model list. Set PROMPTCRAFT_MODEL or edit the config file.",
		)))
	}

	listBox := styleBox.Copy().
		Width(60).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t("[j/k] Di chuyển  [Enter] Chọn  [Esc] Huỷ", "[j/k] Navigate  [Enter] Select  [Esc] Cancel")))

	return a.centerVertically(b.String())
}

func (a *App) renderSettingsAPIKey() string {
	var b strings.Builder

	title := styleTitle.Render(a.t("Cập nhật API key", "Update API Key"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	if p := config.GetProvider(a.state.config.Provider); p != nil && p.SignupURL != "" {
		link := styleSubtitle.Render(fmt.Sprintf(a.t("Lấy key tại: %s", "Get one at: %s"), p.SignupURL))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, link))
		b.WriteString("\n\n")
	}

	inputBox := styleBox.Copy().
		Width(60).
		BorderForeground(colorSecondary).
		Render(a.state.apiKeyInput.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, inputBox))
	b.WriteString("\n\n")

	b.WriteString(a.footer(a.t("[Enter] Lưu  [Esc] Huỷ", "[Enter] Save  [Esc] Cancel")))

	return a.centerVertically(b.String())
}

func (a *App) providerModels() []string {
	if p := config.GetProvider(a.state.config.Provider); p != nil {
		return p.Models
	}
	return nil
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	switch s.settingsMode {
	case "provider":
		return a.handleSettingsList(msg, len(config.Providers), func(i int) tea.Cmd {
			p := config.Providers[i]
			s.config.Provider = p.ID
			s.config.Model = p.DefaultModel
			s.settingsSelected = settingProvider
			if p.NeedsAPIKey && !s.config.HasAPIKey() {
				return a.openSettingsKey()
			}
			s.settingsMode = ""
			return a.applySettings(a.t("Đã đổi nhà cung cấp", "Provider changed"))
		})

	case "model":
		models := a.providerModels()
		return a.handleSettingsList(msg, len(models), func(i int) tea.Cmd {
			s.config.Model = models[i]
			s.settingsMode = ""
			s.settingsSelected = settingModel
			return a.applySettings(a.t("Đã đổi mô hình", "Model changed"))
		})

	case "apikey":
		switch {
		case key.Matches(msg, keys.Back):
			s.settingsMode = ""
			s.settingsSelected = settingAPIKey
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			return nil
		case key.Matches(msg, keys.Enter):
			k := strings.TrimSpace(s.apiKeyInput.Value())
			if k == "" {
				return nil
			}
			s.config.SetAPIKey(k)
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			s.settingsMode = ""
			s.settingsSelected = settingAPIKey
			s.needsSetup = false
			return a.applySettings(a.t("Đã lưu API key", "API key saved"))
		}
		var cmd tea.Cmd
		s.apiKeyInput, cmd = s.apiKeyInput.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keys.Back):
		a.view = viewHome
		return nil
	case key.Matches(msg, keys.Help):
		a.openHelp()
		return nil
	case key.Matches(msg, keys.Up):
		if s.settingsSelected > 0 {
			s.settingsSelected--
		}
		return nil
	case key.Matches(msg, keys.Down):
		if s.settingsSelected < settingCount-1 {
			s.settingsSelected++
		}
		return nil
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Left), key.Matches(msg, keys.Right), msg.String() == " ":
		return a.changeSetting(s.settingsSelected)
	}
	return nil
}

// handleSettingsList moves the cursor over n entries and calls pick on enter.
func (a *App) handleSettingsList(msg tea.KeyMsg, n int, pick func(int) tea.Cmd) tea.Cmd {
	s := a.state
	switch {
	case key.Matches(msg, keys.Back):
		s.settingsMode = ""
		s.settingsSelected = 0
	case key.Matches(msg, keys.Up):
		if s.settingsSelected > 0 {
			s.settingsSelected--
		}
	case key.Matches(msg, keys.Down):
		if s.settingsSelected < n-1 {
			s.settingsSelected++
		}
	case key.Matches(msg, keys.Enter):
		if s.settingsSelected < n {
			return pick(s.settingsSelected)
		}
	}
	return nil
}

func (a *App) openSettingsKey() tea.Cmd {
	s := a.state
	s.settingsMode = "apikey"
	s.apiKeyInput.Reset()
	return s.apiKeyInput.Focus()
}

func (a *App) changeSetting(row int) tea.Cmd {
	s := a.state
	cfg := s.config
	switch row {
	case settingProvider:
		s.settingsMode = "provider"
		s.settingsSelected = max(config.ProviderIndex(cfg.Provider), 0)
		return nil
	case settingModel:
		s.settingsMode = "model"
		s.settingsSelected = 0
		for i, m := range a.providerModels() {
			if m == cfg.Model {
				s.settingsSelected = i
			}
		}
		return nil
	case settingAPIKey:
		return a.openSettingsKey()
	case settingLanguage:
		if cfg.Settings.Language == config.LangEN {
			cfg.Settings.Language = config.LangVI
		} else {
			cfg.Settings.Language = config.LangEN
		}
		// Rebuild the guided form so its labels follow the language.
		a.selectTask(s.task, s.subtype)
		a.refreshTemplates()
	case settingTheme:
		if cfg.Settings.Theme == config.ThemeDark {
			cfg.Settings.Theme = config.ThemeLight
		} else {
			cfg.Settings.Theme = config.ThemeDark
		}
		applyTheme(cfg.Settings.Theme)
	case settingOutput:
		if cfg.Settings.DefaultOutput == config.OutputJSON {
			cfg.Settings.DefaultOutput = config.OutputText
		} else {
			cfg.Settings.DefaultOutput = config.OutputJSON
		}
	case settingHighlight:
		cfg.Settings.HighlightAI = !cfg.Settings.HighlightAI
	case settingClearKey:
		if !cfg.HasAPIKey() {
			return nil
		}
		cfg.ClearAPIKey()
		s.needsSetup = cfg.NeedsSetup()
		return tea.Batch(a.saveConfig(), a.setStatus(a.t("Đã xoá API key", "API key cleared"), false))
	}
	return a.saveConfig()
}

// applySettings saves the config and re-checks the provider.
func (a *App) applySettings(status string) tea.Cmd {
	return tea.Batch(a.saveConfig(), a.testProvider(), a.setStatus(status, false))
}
