package storage

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// PathMarker is the fixed public-URL segment that precedes an object name
const PathMarker = "/" + BucketName + "/"

// SanitizeNameHint removes path separators and surrounding whitespace
func SanitizeNameHint(hint string) string {
	hint = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, hint)
	return strings.TrimSpace(hint)
}

// FileExtension returns everything after the last '.' of filename, or ""
// when the name has no dot.
func FileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx+1:]
}

// ObjectName builds "{sanitized hint}_{unix millis}.{ext}" for an upload.
// The extension keeps the original file's casing.
func ObjectName(nameHint, filename string, now time.Time) string {
	base := SanitizeNameHint(nameHint)
	if base == "" {
		base = "file"
	}
	name := fmt.Sprintf("%s_%d", base, now.UnixMilli())
	if ext := SanitizeNameHint(FileExtension(filename)); ext != "" {
		name += "." + ext
	}
	return name
}

// IsHTMLFilename reports whether filename ends in .html or .htm, ignoring case
func IsHTMLFilename(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}

// ContentTypeFor decides the content type declared for an upload. HTML
// files are always text/html; otherwise the declared type is kept. When no
// type was declared the content is sniffed, and the returned reader replays
// the sniffed prefix.
func ContentTypeFor(filename, declared string, data io.Reader) (string, io.Reader, error) {
	if IsHTMLFilename(filename) {
		return "text/html", data, nil
	}
	if declared != "" {
		return declared, data, nil
	}

	br := bufio.NewReaderSize(data, 3072)
	head, err := br.Peek(3072)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, fmt.Errorf("failed to sniff content type: %w", err)
	}
	return mimetype.Detect(head).String(), br, nil
}

// ObjectPathFromURL reverse-derives an object name from a public URL. The
// name is everything after the PathMarker segment, URL-decoded. URLs without
// the marker, and malformed escapes, yield false.
func ObjectPathFromURL(publicURL string) (string, bool) {
	idx := strings.Index(publicURL, PathMarker)
	if idx < 0 {
		return "", false
	}
	raw := publicURL[idx+len(PathMarker):]
	if raw == "" {
		return "", false
	}
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

// ObjectPaths derives object names from every URL that carries one
func ObjectPaths(urls ...string) []string {
	var paths []string
	for _, u := range urls {
		if p, ok := ObjectPathFromURL(u); ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// publicObjectURL joins a base URL and an escaped object name
func publicObjectURL(base, objectName string) string {
	return strings.TrimRight(base, "/") + PathMarker + url.PathEscape(objectName)
}

// validateObjectName rejects names that are empty or could escape the bucket
func validateObjectName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidObjectName, name)
	}
	return nil
}
