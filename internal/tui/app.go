// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/sant0-9/promptcraft/internal/catalog"
	"github.com/sant0-9/promptcraft/internal/config"
	"github.com/sant0-9/promptcraft/internal/export"
	"github.com/sant0-9/promptcraft/internal/generate"
	"github.com/sant0-9/promptcraft/internal/history"
	"github.com/sant0-9/promptcraft/internal/llm"
)

type view int

const (
	viewHome view = iota
	viewSetup
	viewLibrary
	viewTemplateForm
	viewPreview
	viewTaskForm
	viewGenerating
	viewResult
	viewHistory
	viewSettings
	viewHelp
	viewError
)

// Deps are the services the UI reads from and writes to.
type Deps struct {
	Store     config.Store
	Config    *config.Config
	Catalog   *catalog.Catalog
	History   *history.Store
	Clipboard export.Clipboard
}

type App struct {
	width    int
	height   int
	view     view
	helpFrom view
	state    *state
	deps     Deps
	quitting bool
}

// CatalogChangedMsg tells the app that the template files changed on disk.
type CatalogChangedMsg struct{}

func NewApp(deps Deps) *App {
	s := newState()
	s.config = deps.Config
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	s.needsSetup = s.config.NeedsSetup()
	s.selectedProvider = max(config.ProviderIndex(s.config.Provider), 0)
	applyTheme(s.config.Settings.Theme)

	if deps.Clipboard == nil {
		deps.Clipboard = export.SystemClipboard()
	}

	a := &App{
		view:  viewHome,
		state: s,
		deps:  deps,
	}
	a.refreshTemplates()
	a.state.taskForm = newForm(generate.Fields(s.task, s.subtype), nil, a.lang())
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.WindowSize(), textinput.Blink, a.loadHistory()}
	if a.state.needsSetup {
		a.view = viewSetup
		return tea.Batch(cmds...)
	}

	// Test provider connection
	return tea.Batch(append(cmds, a.testProvider())...)
}

func (a *App) lang() string {
	return a.state.config.Settings.Language
}

// t picks the Vietnamese or English text for the current language.
func (a *App) t(vi, en string) string {
	return localize(a.lang(), vi, en)
}

func localize(lang, vi, en string) string {
	return catalog.Localize(lang, vi, en)
}

func (a *App) testProvider() tea.Cmd {
	cfg := *a.state.config
	return func() tea.Msg {
		provider, err := llm.NewProvider(&cfg)
		if err != nil {
			return providerErrorMsg{err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := provider.Ping(ctx); err != nil {
			return providerErrorMsg{err}
		}

		return providerReadyMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeViewport()
		return a, nil

	case spinner.TickMsg:
		if a.view != viewGenerating {
			return a, nil
		}
		var cmd tea.Cmd
		a.state.spinner, cmd = a.state.spinner.Update(msg)
		return a, cmd

	case setupCompleteMsg:
		a.state.needsSetup = false
		a.view = viewHome
		cmds := []tea.Cmd{a.testProvider()}
		if req := a.state.pending; req != nil {
			a.state.pending = nil
			cmds = append(cmds, a.startGeneration(req))
		}
		return a, tea.Batch(cmds...)

	case setupErrorMsg:
		return a, a.setStatus(a.t("Không lưu được cấu hình: ", "Could not save config: ")+msg.Error(), true)

	case providerReadyMsg:
		log.Debug().Str("provider", a.state.config.Provider).Msg("provider reachable")
		return a, nil

	case providerErrorMsg:
		log.Warn().Err(msg.error).Str("provider", a.state.config.Provider).Msg("provider check failed")
		if generate.Classify(msg.error) == generate.OutcomeMissingCredential {
			return a, nil
		}
		return a, a.setStatus(a.t("Không kết nối được nhà cung cấp", "Provider unreachable")+": "+llm.KindOf(msg.error).String(), true)

	case progressMsg:
		if msg.id != a.state.genID {
			return a, nil
		}
		p := msg.progress
		a.state.progress = &p
		return a, waitForProgress(a.state.progressCh, msg.id)

	case generationDoneMsg:
		if msg.id != a.state.genID {
			return a, nil
		}
		return a, a.handleGenerationDone(msg.out, msg.err)

	case historyLoadedMsg:
		if msg.err != nil {
			return a, a.setStatus(msg.err.Error(), true)
		}
		a.state.historyItems = msg.items
		if a.state.historySelected >= len(msg.items) {
			a.state.historySelected = max(len(msg.items)-1, 0)
		}
		return a, nil

	case CatalogChangedMsg:
		a.refreshTemplates()
		return a, a.setStatus(a.t("Đã tải lại thư viện mẫu", "Template library reloaded"), false)

	case statusMsg:
		return a, a.setStatus(msg.text, msg.isErr)

	case clearStatusMsg:
		if msg.id == a.state.statusID {
			a.state.status = ""
		}
		return a, nil
	}

	return a, a.forwardToInput(msg)
}

// forwardToInput passes non-key messages such as cursor blinks to the
// focused text input of the current view.
func (a *App) forwardToInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.view {
	case viewSetup:
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
	case viewSettings:
		if a.state.settingsMode == "apikey" {
			a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
		}
	case viewLibrary:
		if a.state.searching {
			a.state.searchInput, cmd = a.state.searchInput.Update(msg)
		}
	case viewTemplateForm:
		if a.state.form != nil {
			cmd = a.state.form.update(msg)
		}
	case viewTaskForm:
		cmd = a.state.taskForm.update(msg)
	}
	return cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Quit) {
		if a.state.cancel != nil {
			a.state.cancel()
		}
		a.quitting = true
		return tea.Quit
	}

	// View-specific handling
	switch a.view {
	case viewSetup:
		return a.handleSetupKey(msg)
	case viewHome:
		return a.handleHomeKey(msg)
	case viewLibrary:
		return a.handleLibraryKey(msg)
	case viewTemplateForm:
		return a.handleTemplateFormKey(msg)
	case viewPreview:
		return a.handlePreviewKey(msg)
	case viewTaskForm:
		return a.handleTaskFormKey(msg)
	case viewGenerating:
		return a.handleGeneratingKey(msg)
	case viewResult:
		return a.handleResultKey(msg)
	case viewHistory:
		return a.handleHistoryKey(msg)
	case viewSettings:
		return a.handleSettingsKey(msg)
	case viewHelp:
		if key.Matches(msg, keys.Back) || key.Matches(msg, keys.Help) || msg.String() == "q" {
			a.view = a.helpFrom
		}
		return nil
	case viewError:
		return a.handleErrorKey(msg)
	}
	return nil
}

func (a *App) openHelp() {
	a.helpFrom = a.view
	a.view = viewHelp
}

// startGeneration runs req in the background and switches to the
// generating view. Progress and the final result arrive as messages.
func (a *App) startGeneration(req *generate.Request) tea.Cmd {
	s := a.state
	s.lastReq = req
	if a.view != viewGenerating && a.view != viewSetup && a.view != viewError {
		s.errorReturn = a.view
	}
	s.genID++
	id := s.genID

	provider, err := llm.NewProvider(s.config)
	if err != nil {
		return func() tea.Msg { return generationDoneMsg{id: id, err: err} }
	}

	svc := generate.NewService(provider, s.config.Model)
	svc.SetLimiter(s.limiter)
	svc.SetRepair(s.config.RepairJSON)
	if a.deps.History != nil {
		svc.SetHistory(a.deps.History)
	}

	ch := make(chan generate.Progress, len(generate.Stages)+1)
	svc.SetProgressCallback(func(p generate.Progress) {
		select {
		case ch <- p:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.progressCh = ch
	s.progress = nil
	s.genStart = time.Now()
	a.view = viewGenerating

	return tea.Batch(
		s.spinner.Tick,
		waitForProgress(ch, id),
		func() tea.Msg {
			out, err := svc.Generate(ctx, req)
			close(ch)
			return generationDoneMsg{id: id, out: out, err: err}
		},
	)
}

func waitForProgress(ch <-chan generate.Progress, id int) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg{id: id, progress: p}
	}
}

func (a *App) handleGenerationDone(out *generate.Output, err error) tea.Cmd {
	s := a.state
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	switch generate.Classify(err) {
	case generate.OutcomeOK:
		s.output = out
		s.resultMode = modeText
		if s.config.Settings.DefaultOutput == config.OutputJSON {
			s.resultMode = modeJSON
		}
		a.setResultContent()
		a.view = viewResult
		return a.loadHistory()

	case generate.OutcomeMissingCredential:
		s.pending = s.lastReq
		return a.openKeyEntry()
	}

	if errors.Is(err, context.Canceled) {
		a.view = s.errorReturn
		return a.setStatus(a.t("Đã huỷ", "Cancelled"), false)
	}
	s.lastError = err
	a.view = viewError
	return nil
}

func (a *App) loadHistory() tea.Cmd {
	store := a.deps.History
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		items, err := store.List(ctx)
		return historyLoadedMsg{items: items, err: err}
	}
}

func (a *App) saveConfig() tea.Cmd {
	store := a.deps.Store
	if store == nil {
		return nil
	}
	cfg := *a.state.config
	return func() tea.Msg {
		if err := store.Save(&cfg); err != nil {
			return setupErrorMsg{err}
		}
		return nil
	}
}

// setStatus shows a short message in the status line for a few seconds.
func (a *App) setStatus(text string, isErr bool) tea.Cmd {
	a.state.statusID++
	id := a.state.statusID
	a.state.status = text
	a.state.statusErr = isErr
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

type setupCompleteMsg struct{}
type setupErrorMsg struct{ error }
type providerReadyMsg struct{}
type providerErrorMsg struct{ error }

type progressMsg struct {
	id       int
	progress generate.Progress
}

type generationDoneMsg struct {
	id  int
	out *generate.Output
	err error
}

type historyLoadedMsg struct {
	items []history.Item
	err   error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{ id int }

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewSetup:
		return a.renderSetup()
	case viewLibrary:
		return a.renderLibrary()
	case viewTemplateForm:
		return a.renderTemplateForm()
	case viewPreview:
		return a.renderPreview()
	case viewTaskForm:
		return a.renderTaskForm()
	case viewGenerating:
		return a.renderGenerating()
	case viewResult:
		return a.renderResult()
	case viewHistory:
		return a.renderHistory()
	case viewSettings:
		return a.renderSettings()
	case viewHelp:
		return a.renderHelp()
	case viewError:
		return a.renderError()
	default:
		return a.renderHome()
	}
}
