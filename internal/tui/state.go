package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"golang.org/x/time/rate"

	"github.com/sant0-9/promptcraft/internal/catalog"
	"github.com/sant0-9/promptcraft/internal/config"
	"github.com/sant0-9/promptcraft/internal/generate"
	"github.com/sant0-9/promptcraft/internal/history"
)

// outputMode is how a prompt is displayed and copied.
type outputMode int

const (
	modeText outputMode = iota
	modeJSON
	modeStructured
)

type state struct {
	// Config
	config     *config.Config
	needsSetup bool

	// Setup wizard state
	setupStep        int
	selectedProvider int
	apiKeyInput      textinput.Model

	// Home menu
	homeSelected int

	// Library
	libraryTab      int
	librarySelected int
	searching       bool
	searchInput     textinput.Model
	templates       []*catalog.Template

	// Template form and preview
	template    *catalog.Template
	form        *form
	previewMode outputMode

	// Guided task form
	task     generate.Task
	subtype  string
	taskForm *form

	// Generation
	limiter    *rate.Limiter
	cancel     context.CancelFunc
	genID      int
	progressCh chan generate.Progress
	progress   *generate.Progress
	genStart   time.Time
	lastReq    *generate.Request
	pending    *generate.Request
	spinner    spinner.Model

	// Result
	output     *generate.Output
	resultMode outputMode
	viewport   viewport.Model

	// History
	historyItems    []history.Item
	historySelected int
	confirmClear    bool

	// Settings
	settingsMode     string
	settingsSelected int

	// Errors
	lastError   error
	errorReturn view

	// Transient status line
	status    string
	statusErr bool
	statusID  int
}

func newState() *state {
	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your API key here..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 200
	apiKey.Width = 50

	search := textinput.New()
	search.Placeholder = "search..."
	search.CharLimit = 100
	search.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &state{
		apiKeyInput: apiKey,
		searchInput: search,
		spinner:     sp,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		task:        generate.TaskImage,
		subtype:     generate.DefaultSubtype(generate.TaskImage),
		viewport:    viewport.New(70, 20),
	}
}
