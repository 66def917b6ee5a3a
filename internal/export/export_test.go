package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func TestJSON(t *testing.T) {
	p, err := JSON(map[string]any{"role": "editor", "steps": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, p.Format)
	assert.Equal(t, "{\n  \"role\": \"editor\",\n  \"steps\": [\n    \"a\",\n    \"b\"\n  ]\n}", p.Body)

	raw, err := JSON(json.RawMessage(`{"a":{"b":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": {\n    \"b\": 1\n  }\n}", raw.Body)

	_, err = JSON(json.RawMessage(`{broken`))
	assert.Error(t, err)
}

func TestCopy(t *testing.T) {
	cb := &fakeClipboard{}
	require.NoError(t, Copy(cb, Text("hello")))
	assert.Equal(t, "hello", cb.text)

	failing := &fakeClipboard{err: errors.New("no xclip")}
	err := Copy(failing, Text("hello"))
	assert.ErrorContains(t, err, "no xclip")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(filepath.Join(dir, "out", "prompt"), Text("line"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "prompt.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))

	p, err := JSON(map[string]int{"n": 1})
	require.NoError(t, err)
	path, err = WriteFile(filepath.Join(dir, "doc.data"), p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "doc.data"), path)

	path, err = WriteFile(filepath.Join(dir, "doc"), p)
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(path))
}
