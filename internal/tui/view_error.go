package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/config"
	"github.com/sant0-9/promptcraft/internal/generate"
	"github.com/sant0-9/promptcraft/internal/llm"
)

// errorSuggestions returns hints for the failure behind err.
func (a *App) errorSuggestions(err error) []string {
	if generate.Classify(err) == generate.OutcomeResponseError {
		out := []string{a.t("Mô hình trả về dữ liệu không đúng định dạng.", "The model returned a reply that is not valid output.")}
		if !a.state.config.RepairJSON {
			out = append(out, a.t("Thử lại, hoặc bật repair_json trong config.", "Retry, or enable repair_json in the config file."))
		}
		return out
	}

	switch llm.KindOf(err) {
	case llm.KindAuth:
		return []string{
			a.t("API key không hợp lệ hoặc đã hết hạn.", "The API key was rejected."),
			a.t("Nhấn [s] để cập nhật trong cài đặt.", "Press [s] to update it in settings."),
		}
	case llm.KindRateLimit:
		return []string{
			a.t("Bạn đã chạm giới hạn gọi API.", "You've hit the API rate limit."),
			a.t("Đợi một chút rồi thử lại.", "Wait a moment and try again."),
		}
	case llm.KindNetwork:
		out := []string{a.t("Kiểm tra kết nối mạng.", "Check your internet connection.")}
		if a.state.config.Provider == "ollama" {
			out = append(out, a.t("Đảm bảo Ollama đang chạy: ollama serve", "Make sure Ollama is running: ollama serve"))
		}
		return out
	case llm.KindProvider:
		return []string{a.t("Nhà cung cấp đang gặp lỗi. Thử lại sau hoặc đổi mô hình.", "The provider failed. Retry later or switch model.")}
	}
	return nil
}

func (a *App) renderError() string {
	var b strings.Builder
	width := min(70, max(a.width-4, 20))

	title := lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true).
		Render(a.t("Có lỗi xảy ra", "Something went wrong"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	errMsg := a.t("Lỗi không xác định", "Unknown error")
	if a.state.lastError != nil {
		errMsg = a.state.lastError.Error()
	}

	errBox := styleBox.Copy().
		Width(width).
		BorderForeground(colorError).
		Render(wrapText(errMsg, width-4))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, errBox))
	b.WriteString("\n\n")

	if suggestions := a.errorSuggestions(a.state.lastError); len(suggestions) > 0 {
		suggBox := styleBox.Copy().
			Width(width).
			Render(a.t("Gợi ý:", "Suggestions:") + "\n" + strings.Join(suggestions, "\n"))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, suggBox))
		b.WriteString("\n\n")
	}

	if p := config.GetProvider(a.state.config.Provider); p != nil {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSubtitle.Render(p.Name+" / "+a.state.config.Model)))
		b.WriteString("\n\n")
	}

	b.WriteString(a.footer(a.t("[r] Thử lại  [s] Cài đặt  [Esc] Quay lại", "[r] Retry  [s] Settings  [Esc] Back")))

	return a.centerVertically(b.String())
}

func (a *App) handleErrorKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	switch {
	case key.Matches(msg, keys.Back):
		a.view = s.errorReturn
	case msg.String() == "r":
		if s.lastReq != nil {
			return a.startGeneration(s.lastReq)
		}
	case msg.String() == "s":
		return a.openSettings()
	}
	return nil
}
