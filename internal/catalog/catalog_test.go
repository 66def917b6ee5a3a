package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/promptcraft/internal/prompts"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

const customTemplate = `
id: my-greeting
category: WRITING
title: Lời chào
title_en: Greeting
description: Chào người dùng
description_en: Greet someone by name
body: |
  Hello {{name}}, your topic is {{topic}}.
variables:
  - key: name
    label: Tên
    label_en: Name
    kind: text
  - key: topic
    label: Chủ đề
    label_en: Topic
    kind: select
    options:
      - value: AI
        label: Trí tuệ nhân tạo
        label_en: Artificial intelligence
      - value: Go
    default: AI
`

func TestBuiltinLibrary(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)

	all := c.All()
	require.NotEmpty(t, all)
	assert.Equal(t, len(all), c.Count())
	assert.Equal(t, "upscale-image", all[0].ID)

	for _, tpl := range all {
		assert.True(t, tpl.Builtin(), tpl.ID)
		assert.Contains(t, Categories(), tpl.Category, tpl.ID)

		// Every placeholder in a built-in body has a matching variable, and
		// Validate already rejects the reverse.
		assert.Empty(t, UnboundPlaceholders(tpl), tpl.ID)
		assert.NoError(t, Validate(tpl), tpl.ID)
	}

	for _, cat := range Categories() {
		assert.NotEmpty(t, c.ByCategory(cat), cat)
	}
}

func TestGet(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)

	tpl := c.Get("upscale-image")
	require.NotNil(t, tpl)
	assert.Equal(t, CategoryImage, tpl.Category)
	assert.Nil(t, c.Get("does-not-exist"))

	var nilCatalog *Catalog
	assert.Nil(t, nilCatalog.Get("upscale-image"))
	assert.Zero(t, nilCatalog.Count())
}

func TestSearch(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"english title", "upscale", "upscale-image"},
		{"upper case query", "UPSCALE", "upscale-image"},
		{"vietnamese title", "xóa nền", "remove-background"},
		{"english description", "remove background from image", "remove-background"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, tpl := range c.Search(tt.query) {
				ids = append(ids, tpl.ID)
			}
			assert.Contains(t, ids, tt.want)
		})
	}

	assert.Empty(t, c.Search("zzz-no-such-template"))
}

func TestFilter(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)

	assert.Equal(t, c.ByCategory(CategoryVideo), c.Filter(CategoryVideo, "   "))

	// A query ignores the active category.
	got := c.Filter(CategoryVideo, "upscale")
	require.NotEmpty(t, got)
	assert.Equal(t, CategoryImage, got[0].Category)
}

func TestUserTemplates(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "greeting.yaml", customTemplate)
	writeTemplate(t, dir, "notes.txt", "ignored")
	writeTemplate(t, dir, "broken.yaml", "id: [unclosed")

	c, err := New(dir)
	require.NoError(t, err)

	tpl := c.Get("my-greeting")
	require.NotNil(t, tpl)
	assert.False(t, tpl.Builtin())
	assert.Equal(t, filepath.Join(dir, "greeting.yaml"), tpl.Source)
	assert.Equal(t, "my-greeting", c.All()[len(c.All())-1].ID)

	require.Len(t, c.Skipped(), 1)
	assert.Contains(t, c.Skipped()[0].Error(), "broken.yaml")

	out := prompts.Expand(tpl.Body, Defaults(tpl))
	assert.Equal(t, "Hello , your topic is AI.", out)
}

func TestUserTemplateOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	override := strings.Replace(customTemplate, "id: my-greeting", "id: upscale-image", 1)
	writeTemplate(t, dir, "override.yml", override)

	c, err := New(dir)
	require.NoError(t, err)

	builtin, err := New("")
	require.NoError(t, err)

	assert.Equal(t, builtin.Count(), c.Count())
	tpl := c.Get("upscale-image")
	require.NotNil(t, tpl)
	assert.Equal(t, "Greeting", tpl.TitleEn)
	// The override keeps the built-in position.
	assert.Equal(t, "upscale-image", c.All()[0].ID)
}

func TestReloadPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)
	assert.Nil(t, c.Get("my-greeting"))

	writeTemplate(t, dir, "greeting.yaml", customTemplate)
	require.NoError(t, c.Reload())
	assert.NotNil(t, c.Get("my-greeting"))
}

func TestSortFavoritesFirst(t *testing.T) {
	list := []*Template{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	favs := map[string]bool{"c": true, "b": true}

	got := SortFavoritesFirst(list, func(id string) bool { return favs[id] })

	var ids []string
	for _, tpl := range got {
		ids = append(ids, tpl.ID)
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids)
	assert.Equal(t, "a", list[0].ID, "input must not be reordered")
}

func TestDefaults(t *testing.T) {
	tpl, err := Parse([]byte(customTemplate))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"topic": "AI"}, Defaults(tpl))
}

func TestLocalize(t *testing.T) {
	tpl, err := Parse([]byte(customTemplate))
	require.NoError(t, err)

	assert.Equal(t, "Lời chào", tpl.DisplayTitle("vi"))
	assert.Equal(t, "Greeting", tpl.DisplayTitle("en"))

	topic, ok := tpl.Variable("topic")
	require.True(t, ok)
	assert.Equal(t, "Topic", topic.Title("en"))
	assert.Equal(t, "Trí tuệ nhân tạo", topic.Options[0].Text("vi"))
	assert.Equal(t, "Go", topic.Options[1].Text("en"))
	assert.Equal(t, 1, topic.OptionIndex("Go"))
	assert.Equal(t, -1, topic.OptionIndex("Rust"))

	assert.Equal(t, "en only", Localize("vi", "", "en only"))
	assert.Equal(t, "Ảnh", CategoryImage.Label("vi"))
	assert.Equal(t, "Data", CategoryData.Label("en"))
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing id",
			yaml:    "category: DATA\ntitle: x\nbody: b",
			wantErr: "ID",
		},
		{
			name:    "unknown category",
			yaml:    "id: x\ncategory: AUDIO\ntitle: x\nbody: b",
			wantErr: "Category",
		},
		{
			name:    "missing body",
			yaml:    "id: x\ncategory: DATA\ntitle: x",
			wantErr: "Body",
		},
		{
			name:    "unknown kind",
			yaml:    "id: x\ncategory: DATA\ntitle: x\nbody: b\nvariables:\n  - key: a\n    kind: slider",
			wantErr: "Kind",
		},
		{
			name:    "select without options",
			yaml:    "id: x\ncategory: DATA\ntitle: x\nbody: b\nvariables:\n  - key: a\n    kind: select\n    options: []",
			wantErr: "Options",
		},
		{
			name:    "duplicate variable keys",
			yaml:    "id: x\ncategory: DATA\ntitle: x\nbody: b\nvariables:\n  - key: a\n    kind: text\n  - key: a\n    kind: text",
			wantErr: "Variables",
		},
		{
			name:    "variable without placeholder",
			yaml:    "id: x\ncategory: IMAGE\ntitle: t\nbody: 'Hello {{name}}'\nvariables:\n  - key: other\n    kind: text\n",
			wantErr: `variable "other" has no {{other}} placeholder`,
		},
		{
			name:    "select default not an option",
			yaml:    "id: x\ncategory: DATA\ntitle: x\nbody: '{{a}}'\nvariables:\n  - key: a\n    kind: select\n    options:\n      - value: one\n    default: two",
			wantErr: "Default",
		},
		{
			name:    "malformed yaml",
			yaml:    "id: [",
			wantErr: "decode template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUnboundPlaceholders(t *testing.T) {
	tpl, err := Parse([]byte("id: x\ncategory: DATA\ntitle: x\nbody: '{{a}} {{b}} {{a}}'\nvariables:\n  - key: a\n    kind: text"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, UnboundPlaceholders(tpl))
}

func TestWatchReloadsUserTemplates(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(DebounceDelay)
	writeTemplate(t, dir, "greeting.yaml", customTemplate)

	select {
	case <-changed:
	case <-time.After(10 * DebounceDelay):
		t.Fatal("onChange was not called after a template was written")
	}
	assert.NotNil(t, c.Get("my-greeting"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
