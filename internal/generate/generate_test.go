package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sant0-9/promptcraft/internal/catalog"
	"github.com/sant0-9/promptcraft/internal/config"
	"github.com/sant0-9/promptcraft/internal/history"
	"github.com/sant0-9/promptcraft/internal/llm"
	"github.com/sant0-9/promptcraft/internal/prompts"
)

type fakeProvider struct {
	reply string
	err   error
	last  *llm.CompletionRequest
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Ping(context.Context) error { return nil }

func (f *fakeProvider) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply}, nil
}

type memorySaver struct {
	items []*history.Item
}

func (m *memorySaver) Save(_ context.Context, item *history.Item) error {
	m.items = append(m.items, item)
	return nil
}

var fixedTime = time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)

func newTestService(p llm.Provider) *Service {
	s := NewService(p, "test-model")
	s.SetLimiter(rate.NewLimiter(rate.Inf, 1))
	s.now = func() time.Time { return fixedTime }
	return s
}

const goodReply = `{
  "inputs_raw": {"topic": "bees"},
  "completed_fields": {},
  "assumptions": [{"value": "audience is students", "source": "model"}, "short form"],
  "final_prompt_text": "[ENGLISH]\nWrite about bees\n\n[TIẾNG VIỆT]\nViết về loài ong",
  "final_prompt_json": {"topic": "bees"}
}`

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	require.NoError(t, os.WriteFile(path, png, 0600))
	return path
}

func TestGenerate(t *testing.T) {
	p := &fakeProvider{reply: goodReply}
	saver := &memorySaver{}
	s := newTestService(p)
	s.SetHistory(saver)

	var stages []Stage
	s.SetProgressCallback(func(pr Progress) { stages = append(stages, pr.Stage) })

	out, err := s.Generate(context.Background(), &Request{
		Task:    TaskOutline,
		Subtype: SubtypeDefault,
		Inputs:  map[string]string{"topic": "Bees and pollination in cities today", "goal": ""},
	})
	require.NoError(t, err)

	assert.Contains(t, out.FinalPromptText, "Write about bees")
	assert.Equal(t, Meta{Type: TaskOutline, Subtype: SubtypeDefault, CreatedAt: fixedTime}, out.Meta)
	assert.Equal(t, []Assumption{{Value: "audience is students", Source: "model"}, {Value: "short form", Source: "model"}}, out.Assumptions)
	assert.Equal(t, []Stage{StageBuilding, StageWaiting, StageCalling, StageValidating, StageSaving, StageDone}, stages)

	require.NotNil(t, p.last)
	assert.True(t, p.last.JSON)
	assert.Equal(t, 1.0, p.last.Temperature)
	assert.Equal(t, 0.95, p.last.TopP)
	assert.Equal(t, "test-model", p.last.Model)
	user := p.last.Messages[1].Content
	assert.Contains(t, user, `"target_audience": "general"`)
	assert.Contains(t, user, `"goal": "informative"`)
	assert.NotContains(t, user, `"goal": ""`)

	require.Len(t, saver.items, 1)
	assert.Equal(t, "Bees and pollination in cities", saver.items[0].Title)
	assert.Equal(t, "OUTLINE", saver.items[0].Type)

	back, err := OutputFromHistory(saver.items[0])
	require.NoError(t, err)
	assert.Equal(t, out.FinalPromptText, back.FinalPromptText)
}

func TestGenerateMissingCredential(t *testing.T) {
	_, err := llm.NewProvider(&config.Config{Provider: "gemini"})
	require.Error(t, err)
	assert.Equal(t, OutcomeMissingCredential, Classify(err))
}

func TestGenerateProviderError(t *testing.T) {
	p := &fakeProvider{err: &llm.Error{Kind: llm.KindRateLimit, Provider: "fake", Status: 429, Message: "slow down"}}
	saver := &memorySaver{}
	s := newTestService(p)
	s.SetHistory(saver)

	_, err := s.Generate(context.Background(), &Request{Task: TaskMusic, Subtype: SubtypeDefault, Inputs: map[string]string{"topic": "rain"}})
	require.Error(t, err)
	assert.Equal(t, OutcomeProviderError, Classify(err))
	assert.Empty(t, saver.items)
}

func TestGenerateMalformedReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "Sure! Here is your prompt"},
		{"missing final text", `{"final_prompt_json": {}}`},
		{"blank final text", `{"final_prompt_text": "   "}`},
		{"final text not a string", `{"final_prompt_text": {"a": 1}}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(&fakeProvider{reply: tt.reply})
			_, err := s.Generate(context.Background(), &Request{Task: TaskMusic, Subtype: SubtypeDefault})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Equal(t, OutcomeResponseError, Classify(err))
		})
	}
}

func TestGenerateStripsFence(t *testing.T) {
	s := newTestService(&fakeProvider{reply: "```json\n" + goodReply + "\n```"})
	out, err := s.Generate(context.Background(), &Request{Task: TaskMusic, Subtype: SubtypeDefault})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic": "bees"}`, string(out.FinalPromptJSON))
}

func TestGenerateRepair(t *testing.T) {
	broken := `{"final_prompt_text": "fixed", "final_prompt_json": {"a": 1,},}`

	s := newTestService(&fakeProvider{reply: broken})
	_, err := s.Generate(context.Background(), &Request{Task: TaskMusic, Subtype: SubtypeDefault})
	assert.ErrorIs(t, err, ErrMalformedResponse)

	s.SetRepair(true)
	out, err := s.Generate(context.Background(), &Request{Task: TaskMusic, Subtype: SubtypeDefault})
	require.NoError(t, err)
	assert.Equal(t, "fixed", out.FinalPromptText)
}

func TestGenerateCanceledWhileWaiting(t *testing.T) {
	p := &fakeProvider{reply: goodReply}
	s := newTestService(p)
	s.SetLimiter(rate.NewLimiter(rate.Every(time.Hour), 1))

	_, err := s.Generate(context.Background(), &Request{Task: TaskMusic, Subtype: SubtypeDefault})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Generate(ctx, &Request{Task: TaskMusic, Subtype: SubtypeDefault})
	require.Error(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestBuildAttachesImages(t *testing.T) {
	img := writePNG(t)
	p, err := Build(&Request{
		Task:    TaskVideo,
		Subtype: SubtypeImg2Video,
		Inputs:  map[string]string{"firstFrame": img, "lastFrame": img, "description": "waves roll in"},
	})
	require.NoError(t, err)

	require.Len(t, p.Attachments, 2)
	assert.Equal(t, "image/png", p.Attachments[0].MIMEType)
	assert.Equal(t, "[Image: frame.png]", p.Inputs["firstFrame"])
	assert.Contains(t, p.User, `"firstFrame": "[Image: frame.png]"`)
	assert.Contains(t, p.User, "MODE: IMAGE-TO-VIDEO")
	assert.Contains(t, p.User, "Last frame target")
	assert.Contains(t, p.User, `"motion_intent": "subtle"`)
	assert.NotContains(t, p.User, "{{")
}

func TestBuildRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0600))

	_, err := Build(&Request{Task: TaskImage, Subtype: SubtypeAnalyze, Inputs: map[string]string{"originalImg": path}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an image")

	_, err = Build(&Request{Task: TaskImage, Subtype: SubtypeAnalyze, Inputs: map[string]string{"originalImg": "/does/not/exist.png"}})
	assert.Error(t, err)
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"missing task", Request{Subtype: SubtypeDefault}},
		{"unknown task", Request{Task: "PODCAST", Subtype: SubtypeDefault}},
		{"wrong subtype", Request{Task: TaskImage, Subtype: SubtypeExtend}},
		{"bad language", Request{Task: TaskMusic, Subtype: SubtypeDefault, Language: "fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(&tt.req)
			assert.Error(t, err)
		})
	}
}

func TestCheckProviderVision(t *testing.T) {
	withImage := &Request{Task: TaskImage, Subtype: SubtypeAnalyze, Inputs: map[string]string{"originalImg": "/tmp/a.png"}}
	textOnly := &Request{Task: TaskImage, Subtype: SubtypeGenerate, Inputs: map[string]string{"description": "a fox"}}
	blank := &Request{Task: TaskImage, Subtype: SubtypeAnalyze, Inputs: map[string]string{"originalImg": "  "}}

	assert.True(t, withImage.HasImages())
	assert.False(t, textOnly.HasImages())
	assert.False(t, blank.HasImages())

	err := withImage.CheckProvider("groq")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImagesUnsupported)
	assert.Contains(t, err.Error(), "Groq")

	assert.NoError(t, textOnly.CheckProvider("groq"))
	assert.NoError(t, blank.CheckProvider("groq"))
	for _, p := range config.Providers {
		if p.Vision {
			assert.NoError(t, withImage.CheckProvider(p.ID), p.ID)
		}
	}
	assert.NoError(t, withImage.CheckProvider("unknown"))
}

func TestInstructions(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    []string
		notWant []string
	}{
		{
			name: "research defaults",
			req:  Request{Task: TaskResearch, Subtype: SubtypeDefault, Inputs: map[string]string{"topic": "EV"}},
			want: []string{"RESEARCH DEPTH: standard", "3-5 pages equivalent", "current and recent (last 1-2 years)", "standard (3-5 pages)"},
		},
		{
			name: "research deep",
			req:  Request{Task: TaskResearch, Subtype: SubtypeDefault, Inputs: map[string]string{"depth": "deep", "format": "table"}},
			want: []string{"RESEARCH DEPTH: deep", "comprehensive (10+ pages)", `"structure": "table"`},
		},
		{
			name: "music defaults",
			req:  Request{Task: TaskMusic, Subtype: SubtypeDefault},
			want: []string{`"genre": "pop"`, `"mood": "upbeat"`},
		},
		{
			name:    "single video",
			req:     Request{Task: TaskVideo, Subtype: SubtypePrompt, Inputs: map[string]string{"duration": "8s", "ratio": "9:16"}},
			want:    []string{"Duration: 8s", "Aspect ratio: 9:16", `"aspect_ratio": "9:16"`},
			notWant: []string{"MULTI-VIDEO"},
		},
		{
			name: "multi video",
			req:  Request{Task: TaskVideo, Subtype: SubtypePrompt, Inputs: map[string]string{"count": "3"}},
			want: []string{"MULTI-VIDEO MODE (3 clips)", "continuity_anchors", "Duration: 5s"},
		},
		{
			name: "extend keeps consistency",
			req:  Request{Task: TaskVideo, Subtype: SubtypeExtend, Inputs: map[string]string{"basePrompt": "a fox runs"}},
			want: []string{"a fox runs", "Continue the action naturally", "YES - Keep", "continuity_check"},
		},
		{
			name: "extend allows variations",
			req:  Request{Task: TaskVideo, Subtype: SubtypeExtend, Inputs: map[string]string{"keepConsistency": "false"}},
			want: []string{"No base prompt provided", "Allow variations"},
		},
		{
			name:    "image compose",
			req:     Request{Task: TaskImage, Subtype: SubtypeCompose},
			want:    []string{"TASK: IMAGE PROMPT (Compose)", "reference_images_used"},
			notWant: []string{"{{subtype"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Build(&tt.req)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, p.User, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, p.User, w)
			}
		})
	}
}

func TestBuildLanguage(t *testing.T) {
	vi, err := Build(&Request{Task: TaskMusic, Subtype: SubtypeDefault})
	require.NoError(t, err)
	assert.Contains(t, vi.System, "[TIẾNG VIỆT]")

	en, err := Build(&Request{Task: TaskMusic, Subtype: SubtypeDefault, Language: "en"})
	require.NoError(t, err)
	assert.Contains(t, en.System, "USER LANGUAGE SETTING: English")
}

func TestFields(t *testing.T) {
	for _, task := range Tasks {
		for _, sub := range task.Subtypes() {
			fields := Fields(task, sub)
			require.NotEmpty(t, fields, "%s/%s", task, sub)
			seen := map[string]bool{}
			for _, f := range fields {
				assert.False(t, seen[f.Key], "duplicate field %s in %s/%s", f.Key, task, sub)
				seen[f.Key] = true
				if f.Kind == catalog.KindSelect {
					assert.NotEmpty(t, f.Options, f.Key)
					if f.Default != "" {
						assert.GreaterOrEqual(t, f.OptionIndex(f.Default), 0, f.Key)
					}
				}
			}
		}
	}

	assert.Equal(t, SubtypeGenerate, DefaultSubtype(TaskImage))
	assert.Equal(t, SubtypePrompt, DefaultSubtype(TaskVideo))
	assert.Equal(t, SubtypeDefault, DefaultSubtype(TaskMusic))
	assert.Equal(t, map[string]string{"keepConsistency": "true"}, FieldDefaults(TaskVideo, SubtypeExtend))
}

func TestHistoryTitle(t *testing.T) {
	assert.Equal(t, "topic wins", HistoryTitle(map[string]string{"topic": "topic wins", "description": "no"}, fixedTime))
	assert.Equal(t, "desc", HistoryTitle(map[string]string{"description": "desc", "prompt": "p"}, fixedTime))
	assert.Equal(t, "Prompt 09:30:00", HistoryTitle(map[string]string{"genre": "rock"}, fixedTime))
	assert.Equal(t, strings.Repeat("ă", 30), HistoryTitle(map[string]string{"prompt": strings.Repeat("ă", 40)}, fixedTime))
}

func TestExtendVideo(t *testing.T) {
	_, ok := ExtendVideo(&Output{Meta: Meta{Type: TaskImage}}, "vi")
	assert.False(t, ok)

	req, ok := ExtendVideo(&Output{FinalPromptText: "a fox runs", Meta: Meta{Type: TaskVideo, Subtype: SubtypePrompt}}, "en")
	require.True(t, ok)
	want := &Request{
		Task:    TaskVideo,
		Subtype: SubtypeExtend,
		Inputs: map[string]string{
			"basePrompt":      "a fox runs",
			"extensionIdea":   "",
			"keepConsistency": "true",
			"duration":        "5s",
		},
		Language: "en",
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("ExtendVideo mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, req.Validate())
}

func TestFromTemplate(t *testing.T) {
	tmpl := &catalog.Template{
		ID:       "t",
		Category: catalog.CategoryWriting,
		Title:    "Viết lại",
		TitleEn:  "Rewrite",
		Body:     "***TONE***\n{{tone}}\n\n***TEXT***\n{{text}}",
		Variables: []catalog.Variable{
			{Key: "tone", Kind: catalog.KindText, Default: "friendly"},
			{Key: "text", Kind: catalog.KindTextarea},
		},
	}

	res := FromTemplate(tmpl, map[string]string{"tone": "formal", "text": "hi"})
	assert.Equal(t, "***TONE***\nformal\n\n***TEXT***\nhi", res.Text)
	assert.Equal(t, "formal", res.Document["tone"].Text)

	quick := QuickCopy(tmpl)
	assert.Equal(t, "friendly", quick.Document["tone"].Text)

	req := RefineRequest(tmpl, map[string]string{"tone": "formal", "text": "hi"}, "en")
	assert.Equal(t, TaskOutline, req.Task)
	assert.Equal(t, res.Text, req.Inputs["prompt"])
	assert.Equal(t, "Rewrite", req.Inputs["template"])
}

func TestStructuredView(t *testing.T) {
	out := &Output{FinalPromptText: "***SUBJECT***\na cat\n\n***STYLE***\noil painting"}
	doc := StructuredView(out)
	assert.Equal(t, prompts.Document{
		"subject": {Text: "a cat"},
		"style":   {Text: "oil painting"},
	}, doc)

	assert.Equal(t, "{}", out.PrettyJSON())
	out.FinalPromptJSON = []byte(`{"a":1}`)
	assert.Equal(t, "{\n  \"a\": 1\n}", out.PrettyJSON())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeOK, Classify(nil))
	assert.Equal(t, OutcomeProviderError, Classify(errors.New("boom")))
	assert.Equal(t, OutcomeProviderError, Classify(&llm.Error{Kind: llm.KindNetwork}))
	assert.Equal(t, OutcomeResponseError, Classify(&llm.Error{Kind: llm.KindResponse}))
	assert.Equal(t, "missing_credential", OutcomeMissingCredential.String())
}
