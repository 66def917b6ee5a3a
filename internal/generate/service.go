// Package generate turns guided form inputs and templates into model calls
// and validates what comes back.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/sant0-9/promptcraft/internal/catalog"
	"github.com/sant0-9/promptcraft/internal/history"
	"github.com/sant0-9/promptcraft/internal/llm"
	"github.com/sant0-9/promptcraft/internal/prompts"
)

const (
	temperature = 1.0
	topP        = 0.95
	titleLength = 30
)

// Saver stores finished generations.
type Saver interface {
	Save(ctx context.Context, item *history.Item) error
}

// Service runs generations against one provider.
type Service struct {
	provider   llm.Provider
	model      string
	limiter    *rate.Limiter
	repair     bool
	history    Saver
	now        func() time.Time
	onProgress func(Progress)
}

// NewService creates a service that sends at most one request per second.
func NewService(provider llm.Provider, model string) *Service {
	return &Service{
		provider: provider,
		model:    model,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		now:      time.Now,
	}
}

// SetRepair enables one jsonrepair pass over invalid replies.
func (s *Service) SetRepair(on bool) {
	s.repair = on
}

// SetHistory sets where successful generations are saved.
func (s *Service) SetHistory(h Saver) {
	s.history = h
}

// SetLimiter replaces the request pacing.
func (s *Service) SetLimiter(l *rate.Limiter) {
	s.limiter = l
}

// SetProgressCallback sets the progress callback.
func (s *Service) SetProgressCallback(fn func(Progress)) {
	s.onProgress = fn
}

// Generate builds the request, calls the provider and validates the reply.
// Use Classify on the returned error to decide how to react.
func (s *Service) Generate(ctx context.Context, req *Request) (*Output, error) {
	s.progress(StageBuilding, "Building instructions...")
	p, err := Build(req)
	if err != nil {
		return nil, err
	}

	s.progress(StageWaiting, "Waiting for a free slot...")
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	s.progress(StageCalling, fmt.Sprintf("Calling %s...", s.provider.Name()))
	call := llm.NewRequest(s.model, p.System, p.User)
	call.Temperature = temperature
	call.TopP = topP
	call.JSON = true
	call.Messages[len(call.Messages)-1].Images = p.Attachments

	start := time.Now()
	resp, err := s.provider.Complete(ctx, call)
	logger := log.With().
		Str("provider", s.provider.Name()).
		Str("model", s.model).
		Str("task", string(req.Task)).
		Str("subtype", req.Subtype).
		Int("attachments", len(p.Attachments)).
		Dur("duration", time.Since(start)).
		Logger()
	if err != nil {
		logger.Warn().Err(err).Msg("generation failed")
		return nil, err
	}
	logger.Info().Int("tokens", resp.Usage.TotalTokens).Msg("generation finished")

	s.progress(StageValidating, "Checking the reply...")
	out, err := decodeOutput(resp.Content, s.repair)
	if err != nil {
		logger.Warn().Err(err).Int("bytes", len(resp.Content)).Msg("invalid model reply")
		return nil, err
	}
	out.Meta = Meta{Type: req.Task, Subtype: req.Subtype, CreatedAt: s.now()}

	if s.history != nil {
		s.progress(StageSaving, "Saving to history...")
		item, err := HistoryItem(req, out)
		if err == nil {
			err = s.history.Save(ctx, item)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("save history")
		}
	}

	s.progress(StageDone, "Done")
	return out, nil
}

// Refine sends an expanded template to the model for polishing.
func (s *Service) Refine(ctx context.Context, t *catalog.Template, values map[string]string, lang string) (*Output, error) {
	return s.Generate(ctx, RefineRequest(t, values, lang))
}

// Result is a template expanded locally.
type Result struct {
	Text     string
	Document prompts.Document
}

// FromTemplate expands t with values without calling a model.
func FromTemplate(t *catalog.Template, values map[string]string) Result {
	text := prompts.Expand(t.Body, values)
	return Result{Text: text, Document: prompts.ParseSections(text)}
}

// QuickCopy expands t with its default values.
func QuickCopy(t *catalog.Template) Result {
	return FromTemplate(t, catalog.Defaults(t))
}

// refineTasks maps library categories to the guided task used for refining.
var refineTasks = map[catalog.Category]Task{
	catalog.CategoryImage:     TaskImage,
	catalog.CategoryVideo:     TaskVideo,
	catalog.CategoryWriting:   TaskOutline,
	catalog.CategoryMarketing: TaskOutline,
	catalog.CategoryData:      TaskResearch,
}

// RefineRequest wraps an expanded template as the input of a guided task.
func RefineRequest(t *catalog.Template, values map[string]string, lang string) *Request {
	task, ok := refineTasks[t.Category]
	if !ok {
		task = TaskOutline
	}
	return &Request{
		Task:    task,
		Subtype: DefaultSubtype(task),
		Inputs: map[string]string{
			"prompt":   FromTemplate(t, values).Text,
			"template": t.DisplayTitle(lang),
		},
		Language: lang,
	}
}

// ExtendVideo prepares an Extend request continuing a video result. It
// returns false for outputs that are not videos.
func ExtendVideo(out *Output, lang string) (*Request, bool) {
	if out == nil || out.Meta.Type != TaskVideo {
		return nil, false
	}
	return &Request{
		Task:    TaskVideo,
		Subtype: SubtypeExtend,
		Inputs: map[string]string{
			"basePrompt":      out.FinalPromptText,
			"extensionIdea":   "",
			"keepConsistency": "true",
			"duration":        "5s",
		},
		Language: lang,
	}, true
}

// HistoryTitle picks a short title from the inputs, falling back to the time.
func HistoryTitle(inputs map[string]string, now time.Time) string {
	for _, k := range []string{"topic", "description", "idea", "prompt"} {
		if v := strings.TrimSpace(inputs[k]); v != "" {
			return truncateRunes(v, titleLength)
		}
	}
	return "Prompt " + now.Format("15:04:05")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// HistoryItem converts a finished generation into a history record.
func HistoryItem(req *Request, out *Output) (*history.Item, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return &history.Item{
		Title:     HistoryTitle(req.Inputs, out.Meta.CreatedAt),
		Type:      string(out.Meta.Type),
		Subtype:   out.Meta.Subtype,
		CreatedAt: out.Meta.CreatedAt,
		Data:      data,
	}, nil
}

// OutputFromHistory decodes a saved record.
func OutputFromHistory(item *history.Item) (*Output, error) {
	var out Output
	if err := json.Unmarshal(item.Data, &out); err != nil {
		return nil, fmt.Errorf("decode history item %s: %w", item.ID, err)
	}
	return &out, nil
}
