package storage_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/straye-as/toolshelf/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	ts := time.UnixMilli(1700000000123)

	tests := []struct {
		name     string
		hint     string
		filename string
		expected string
	}{
		{"keeps extension casing", "My Tool", "x.HTML", "My Tool_1700000000123.HTML"},
		{"strips separators and whitespace", "  a/b\\c  ", "index.html", "abc_1700000000123.html"},
		{"empty hint falls back to file", "   ", "cover.png", "file_1700000000123.png"},
		{"no extension when filename has no dot", "Cover", "README", "Cover_1700000000123"},
		{"uses last dot only", "Arch", "bundle.tar.gz", "Arch_1700000000123.gz"},
		{"dots inside hint kept", "Wait... what", "x.html", "Wait... what_1700000000123.html"},
		{"double dot version hint kept", "v1..2", "x.html", "v1..2_1700000000123.html"},
		{"trailing dot gives no extension", "Cover", "notes.", "Cover_1700000000123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, storage.ObjectName(tt.hint, tt.filename, ts))
		})
	}
}

func TestContentTypeFor_HTMLAlwaysTextHTML(t *testing.T) {
	for _, name := range []string{"x.HTML", "page.htm", "Index.Html"} {
		ct, _, err := storage.ContentTypeFor(name, "application/octet-stream", strings.NewReader("<p>"))
		require.NoError(t, err)
		assert.Equal(t, "text/html", ct, name)
	}
}

func TestContentTypeFor_KeepsDeclaredType(t *testing.T) {
	ct, _, err := storage.ContentTypeFor("cover.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
}

func TestContentTypeFor_SniffsWhenUndeclared(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32)

	ct, r, err := storage.ContentTypeFor("cover", "", strings.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	replayed, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, png, string(replayed))
}

func TestObjectPathFromURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		path   string
		hasObj bool
	}{
		{
			name:   "decodes escaped object name",
			url:    "https://cdn.example.com/storage/v1/object/public/tool-files/My%20Tool_123.html",
			path:   "My Tool_123.html",
			hasObj: true,
		},
		{
			name:   "plain object name",
			url:    "http://localhost:8080/tool-files/cover_1.png",
			path:   "cover_1.png",
			hasObj: true,
		},
		{
			name: "external url has no object",
			url:  "https://example.com/some/tool.html",
		},
		{
			name: "empty url",
			url:  "",
		},
		{
			name: "marker with nothing after it",
			url:  "https://x/tool-files/",
		},
		{
			name: "malformed escape",
			url:  "https://x/tool-files/bad%zz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := storage.ObjectPathFromURL(tt.url)
			assert.Equal(t, tt.hasObj, ok)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestObjectPaths_SkipsExternalURLs(t *testing.T) {
	paths := storage.ObjectPaths(
		"https://x/tool-files/a_1.html",
		"https://elsewhere.example.com/image.png",
		"https://x/tool-files/b_2.png",
	)
	assert.Equal(t, []string{"a_1.html", "b_2.png"}, paths)
}

func TestPublicURL_RoundTripsThroughPathDerivation(t *testing.T) {
	bucket, err := storage.NewLocalBucket(t.TempDir(), "http://localhost:8080"+storage.LocalPublicPrefix)
	require.NoError(t, err)

	name := storage.ObjectName("My Tool", "index.html", time.UnixMilli(42))
	publicURL := bucket.PublicURL(name)

	assert.Equal(t, "http://localhost:8080/storage/v1/object/public/tool-files/My%20Tool_42.html", publicURL)

	derived, ok := storage.ObjectPathFromURL(publicURL)
	require.True(t, ok)
	assert.Equal(t, name, derived)
}
