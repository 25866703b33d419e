package form

import (
	"bytes"
	"strings"

	"github.com/straye-as/toolshelf/internal/domain"
)

// Slot identifies one of the form's two file areas
type Slot int

const (
	// SlotTool holds the tool itself: an uploaded HTML page or a link
	SlotTool Slot = iota
	// SlotCover holds the cover image: an uploaded image or a link
	SlotCover
)

func (s Slot) String() string {
	switch s {
	case SlotTool:
		return "tool"
	case SlotCover:
		return "cover"
	default:
		return "unknown"
	}
}

// File is a file picked, dropped or pasted into a slot
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *File) upload() domain.FileUpload {
	return domain.FileUpload{
		Filename:    f.Name,
		ContentType: f.ContentType,
		Data:        bytes.NewReader(f.Data),
	}
}

// SourceKind tells which variant a FileSource holds
type SourceKind int

const (
	SourceUnset SourceKind = iota
	SourceUploaded
	SourceExternal
)

// FileSource is what a slot resolves to on submit: nothing, a file that
// still has to be uploaded, or an external URL used as-is.
type FileSource struct {
	kind SourceKind
	file *File
	url  string
}

// Unset returns the empty source
func Unset() FileSource {
	return FileSource{}
}

// Uploaded returns a source backed by a local file
func Uploaded(f File) FileSource {
	return FileSource{kind: SourceUploaded, file: &f}
}

// External returns a source pointing at url. A blank url is Unset.
func External(url string) FileSource {
	url = strings.TrimSpace(url)
	if url == "" {
		return Unset()
	}
	return FileSource{kind: SourceExternal, url: url}
}

// Kind returns the variant
func (s FileSource) Kind() SourceKind {
	return s.kind
}

// File returns the attached file, or nil unless the source is Uploaded
func (s FileSource) File() *File {
	return s.file
}

// URL returns the external URL, or "" unless the source is External
func (s FileSource) URL() string {
	return s.url
}

// HasFile reports whether a file is attached
func (s FileSource) HasFile() bool {
	return s.kind == SourceUploaded
}

// accepts reports whether f may be attached to the slot
func (s Slot) accepts(f File) bool {
	switch s {
	case SlotTool:
		name := strings.ToLower(f.Name)
		return strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm")
	case SlotCover:
		return isImage(f.ContentType)
	default:
		return false
	}
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
