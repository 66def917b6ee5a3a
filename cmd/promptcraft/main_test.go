package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSet(t *testing.T) {
	got, err := parseSet([]string{"topic=bees", "note=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"topic": "bees", "note": "a=b", "empty": ""}, got)

	_, err = parseSet([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseSet([]string{"=x"})
	assert.Error(t, err)
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithStderr(t, stdin, args...)
	return out, err
}

func runWithStderr(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("PROMPTCRAFT_HOME", t.TempDir())

	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "***TONE***\nwarm\n***SHOTS***\none\ntwo\n", "parse", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"tone": "warm"`)
	assert.Contains(t, out, `"shots": [`)
}

func TestParseCommandWithoutMarkers(t *testing.T) {
	out, err := run(t, "just a prompt", "parse")
	require.NoError(t, err)
	assert.Contains(t, out, `"prompt": "just a prompt"`)
}

func TestExpandToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upscale")
	out, errOut, err := runWithStderr(t, "", "expand", "upscale-image", "--set", "scale=4", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "wrote "+path)

	data, err := os.ReadFile(strings.TrimSpace(strings.TrimPrefix(errOut, "wrote ")))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Scale factor: 4x")
}

func TestExpandCommand(t *testing.T) {
	out, err := run(t, "", "expand", "upscale-image", "--set", "scale=4")
	require.NoError(t, err)
	assert.Contains(t, out, "Scale factor: 4x")
	assert.NotContains(t, out, "{{")

	_, err = run(t, "", "expand", "upscale-image", "--set", "nope=1")
	assert.Error(t, err)

	_, err = run(t, "", "expand", "no-such-template")
	assert.Error(t, err)
}

func TestTemplatesListCategory(t *testing.T) {
	out, err := run(t, "", "templates", "list", "--category", "video")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 1)
	for _, l := range lines[1:] {
		assert.Contains(t, l, "VIDEO")
	}

	_, err = run(t, "", "templates", "list", "--category", "poetry")
	assert.Error(t, err)
}
