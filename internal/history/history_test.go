package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAssignsIDAndTime(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	item := &Item{Title: "cat", Type: "IMAGE", Subtype: "Generate", Data: datatypes.JSON(`{"final_prompt_text":"a cat"}`)}
	require.NoError(t, s.Save(ctx, item))
	assert.Len(t, item.ID, 36)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat", got.Title)
	assert.JSONEq(t, `{"final_prompt_text":"a cat"}`, string(got.Data))
}

func TestListNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 3 {
		require.NoError(t, s.Save(ctx, &Item{
			Title:     fmt.Sprintf("item %d", i),
			Type:      "MUSIC",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "item 2", items[0].Title)
	assert.Equal(t, "item 0", items[2].Title)
}

func TestSavePrunesToLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range DefaultLimit + 3 {
		require.NoError(t, s.Save(ctx, &Item{
			Title:     fmt.Sprintf("item %d", i),
			Type:      "VIDEO",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, DefaultLimit)
	assert.Equal(t, fmt.Sprintf("item %d", DefaultLimit+2), items[0].Title)
	assert.Equal(t, "item 3", items[len(items)-1].Title)
}

func TestSetLimit(t *testing.T) {
	s := openStore(t)
	s.SetLimit(2)
	s.SetLimit(0)
	ctx := context.Background()

	for i := range 4 {
		require.NoError(t, s.Save(ctx, &Item{Title: fmt.Sprint(i), Type: "OUTLINE", CreatedAt: time.Unix(int64(i), 0)}))
	}
	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestDeleteAndClear(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	a := &Item{Title: "a", Type: "RESEARCH"}
	b := &Item{Title: "b", Type: "RESEARCH"}
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err := s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrNotFound)

	require.NoError(t, s.Clear(ctx))
	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
