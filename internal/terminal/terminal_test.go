package terminal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/form"
)

func TestConsole_PromptReadsLine(t *testing.T) {
	var out bytes.Buffer
	c := NewConsoleWithIO(strings.NewReader("xiddeletecheck\r\n"), &out)

	secret, ok := c.Prompt("Password:")

	assert.True(t, ok)
	assert.Equal(t, "xiddeletecheck", secret)
	assert.Equal(t, "Password: ", out.String())
}

func TestConsole_PromptDismissedOnEOF(t *testing.T) {
	c := NewConsoleWithIO(strings.NewReader(""), &bytes.Buffer{})

	_, ok := c.Prompt("Password:")

	assert.False(t, ok)
}

func TestConsole_PromptUsesNoEchoOnTerminal(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()
	readPassword = func(fd int) ([]byte, error) { return []byte("hidden"), nil }

	var out bytes.Buffer
	c := NewConsoleWithIO(strings.NewReader("should not be read\n"), &out)
	c.isTTY = true

	secret, ok := c.Prompt("Password:")

	assert.True(t, ok)
	assert.Equal(t, "hidden", secret)

	readPassword = func(fd int) ([]byte, error) { return nil, errors.New("interrupted") }
	_, ok = c.Prompt("Password:")
	assert.False(t, ok)
}

func TestConsole_AskKeepsCurrentOnEmptyAnswer(t *testing.T) {
	var out bytes.Buffer
	c := NewConsoleWithIO(strings.NewReader("\nNew title\n"), &out)

	got, err := c.Ask("Title", "Old")
	require.NoError(t, err)
	assert.Equal(t, "Old", got)

	got, err = c.Ask("Title", "Old")
	require.NoError(t, err)
	assert.Equal(t, "New title", got)

	assert.Equal(t, "Title [Old]: Title [Old]: ", out.String())
}

func TestConsole_AlertAndOpen(t *testing.T) {
	orig := openBrowser
	defer func() { openBrowser = orig }()
	var opened string
	openBrowser = func(url string) error {
		opened = url
		return nil
	}

	var out bytes.Buffer
	c := NewConsoleWithIO(strings.NewReader(""), &out)

	c.Alert("Failed to delete tool")
	require.NoError(t, c.OpenURL("https://example.com"))

	assert.Equal(t, "! Failed to delete tool\n", out.String())
	assert.Equal(t, "https://example.com", opened)
}

func TestRenderCards(t *testing.T) {
	id := uuid.MustParse("7f2c1c1e-4f43-4d2b-9a55-1a2b3c4d5e6f")
	var out bytes.Buffer

	err := RenderCards(&out, []domain.Tool{{
		ID:          id,
		Title:       "Color Mover",
		Description: "Shift\npalettes " + strings.Repeat("x", 80),
		URL:         "https://example.com",
		Tags:        []string{"design", "css"},
	}}, "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], id.String())
	assert.Contains(t, lines[1], "design,css")
	assert.Contains(t, lines[1], "Shift palettes")
	assert.Contains(t, lines[1], "…")
}

func TestRenderCards_Empty(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, RenderCards(&out, nil, "regex"))
	assert.Equal(t, "No tools found matching \"regex\"\n", out.String())
}

func TestReadFile_DetectsContentType(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "cover.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o600))

	f, err := ReadFile(png)
	require.NoError(t, err)

	assert.Equal(t, "cover.png", f.Name)
	assert.Equal(t, "image/png", f.ContentType)

	fm := form.New(nil, NewConsoleWithIO(strings.NewReader(""), &bytes.Buffer{}), nil)
	fm.Open(nil)
	assert.NoError(t, fm.Drop(form.SlotCover, f))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}
