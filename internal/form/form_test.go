package form_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/form"
)

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) Alert(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

type upload struct {
	filename    string
	contentType string
	data        string
	nameHint    string
}

type fakeUploader struct {
	uploads []upload
	err     error
}

func (u *fakeUploader) UploadFile(ctx context.Context, file domain.FileUpload, nameHint string) (*domain.UploadFileResponse, error) {
	if u.err != nil {
		return nil, u.err
	}
	data, err := io.ReadAll(file.Data)
	if err != nil {
		return nil, err
	}
	u.uploads = append(u.uploads, upload{file.Filename, file.ContentType, string(data), nameHint})
	return &domain.UploadFileResponse{URL: "https://files.test/tool-files/" + file.Filename}, nil
}

func newForm() (*form.Form, *fakeUploader, *recordingAlerter) {
	uploader := &fakeUploader{}
	alerter := &recordingAlerter{}
	return form.New(uploader, alerter, zap.NewNop()), uploader, alerter
}

func capture(dst *domain.ToolInput) form.SaveFunc {
	return func(ctx context.Context, input domain.ToolInput) error {
		*dst = input
		return nil
	}
}

var htmlFile = form.File{Name: "x.HTML", ContentType: "text/html", Data: []byte("<h1>x</h1>")}
var pngFile = form.File{Name: "shot.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

func TestForm_OpenCreateResetsEverything(t *testing.T) {
	f, _, _ := newForm()
	f.Open(&domain.Tool{ID: uuid.New(), Title: "Old", URL: "http://old"})
	require.NoError(t, f.Drop(form.SlotCover, pngFile))

	f.Open(nil)

	assert.True(t, f.IsOpen())
	assert.Equal(t, form.ModeCreate, f.Mode())
	assert.Nil(t, f.Editing())
	assert.Equal(t, form.Values{}, f.Values())
	assert.Equal(t, form.SourceUnset, f.Source(form.SlotTool).Kind())
	assert.Equal(t, form.SourceUnset, f.Source(form.SlotCover).Kind())
}

func TestForm_OpenEditSeedsFields(t *testing.T) {
	f, _, _ := newForm()
	seed := &domain.Tool{
		ID:          uuid.New(),
		Title:       "Color Mover",
		Description: "Shift palettes",
		URL:         "https://example.com/tool",
		ImageURL:    "https://example.com/cover.png",
		Tags:        []string{"design", "css"},
		Author:      "Kari",
	}

	f.Open(seed)

	assert.Equal(t, form.ModeEdit, f.Mode())
	assert.Equal(t, seed.ID, f.Editing().ID)
	assert.Equal(t, form.Values{
		Title:       "Color Mover",
		Description: "Shift palettes",
		Author:      "Kari",
		Tags:        "design, css",
	}, f.Values())
	assert.Equal(t, "https://example.com/tool", f.Source(form.SlotTool).URL())
	assert.Equal(t, "https://example.com/cover.png", f.Source(form.SlotCover).URL())
}

func TestForm_FileTakesPrecedenceOverTypedURL(t *testing.T) {
	f, _, _ := newForm()
	f.Open(nil)
	require.True(t, f.SetURL(form.SlotTool, "http://typed"))

	require.NoError(t, f.Pick(form.SlotTool, htmlFile))
	src := f.Source(form.SlotTool)
	assert.Equal(t, form.SourceUploaded, src.Kind())
	assert.Empty(t, src.URL(), "attaching a file clears the typed URL")

	assert.False(t, f.SetURL(form.SlotTool, "http://again"))
	assert.Equal(t, form.SourceUploaded, f.Source(form.SlotTool).Kind())

	f.Clear(form.SlotTool)
	assert.True(t, f.SetURL(form.SlotTool, "http://again"))
	assert.Equal(t, "http://again", f.Source(form.SlotTool).URL())
}

func TestForm_DropValidation(t *testing.T) {
	tests := []struct {
		name    string
		slot    form.Slot
		file    form.File
		wantErr bool
		alert   string
	}{
		{"html file on tool slot", form.SlotTool, htmlFile, false, ""},
		{"htm file case-insensitive", form.SlotTool, form.File{Name: "page.HtM"}, false, ""},
		{"non-html on tool slot", form.SlotTool, form.File{Name: "notes.txt", ContentType: "text/plain"}, true, form.MsgInvalidToolFile},
		{"image on cover slot", form.SlotCover, pngFile, false, ""},
		{"non-image on cover slot", form.SlotCover, form.File{Name: "x.html", ContentType: "text/html"}, true, form.MsgInvalidCover},
		{"image named like html still needs image type", form.SlotCover, form.File{Name: "x.png"}, true, form.MsgInvalidCover},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, alerter := newForm()
			f.Open(nil)

			err := f.Drop(tt.slot, tt.file)

			if tt.wantErr {
				assert.ErrorIs(t, err, form.ErrInvalidFile)
				assert.Equal(t, []string{tt.alert}, alerter.messages)
				assert.Equal(t, form.SourceUnset, f.Source(tt.slot).Kind())
				return
			}
			assert.NoError(t, err)
			assert.Empty(t, alerter.messages)
			assert.Equal(t, form.SourceUploaded, f.Source(tt.slot).Kind())
		})
	}
}

func TestForm_PasteTakesFirstImage(t *testing.T) {
	f, _, _ := newForm()
	f.Open(nil)
	f.SetURL(form.SlotCover, "http://typed.png")

	second := form.File{Name: "second.jpg", ContentType: "image/jpeg"}
	ok := f.Paste([]form.File{{Name: "text", ContentType: "text/plain"}, pngFile, second})

	assert.True(t, ok)
	src := f.Source(form.SlotCover)
	require.Equal(t, form.SourceUploaded, src.Kind())
	assert.Equal(t, "shot.png", src.File().Name)
}

func TestForm_PasteWithoutImageChangesNothing(t *testing.T) {
	f, _, alerter := newForm()
	f.Open(nil)
	f.SetURL(form.SlotCover, "http://typed.png")

	assert.False(t, f.Paste([]form.File{{Name: "text", ContentType: "text/plain"}}))
	assert.Equal(t, "http://typed.png", f.Source(form.SlotCover).URL())
	assert.Empty(t, alerter.messages)
}

func TestForm_SubmitCreateWithoutFiles(t *testing.T) {
	f, uploader, alerter := newForm()
	f.Open(nil)
	f.SetValues(form.Values{Title: "T", Description: "D", Tags: "a,b"})
	f.SetURL(form.SlotTool, "http://x")

	var saved domain.ToolInput
	require.NoError(t, f.Submit(context.Background(), capture(&saved)))

	assert.Equal(t, "T", saved.Title)
	assert.Equal(t, "D", saved.Description)
	assert.Equal(t, "http://x", saved.URL)
	assert.Empty(t, saved.ImageURL)
	assert.Equal(t, []string{"a", "b"}, saved.Tags)
	assert.Empty(t, uploader.uploads, "no upload without attached files")
	assert.Empty(t, alerter.messages)
	assert.False(t, f.IsOpen(), "form closes on success")
	assert.False(t, f.Busy())
}

func TestForm_SubmitUploadsAttachedFilesWithTitleHint(t *testing.T) {
	f, uploader, _ := newForm()
	f.Open(nil)
	f.SetValues(form.Values{Title: "  My Tool ", Description: "D", Tags: " a, b ,,c ,", Author: " Ola "})
	require.NoError(t, f.Drop(form.SlotTool, htmlFile))
	require.NoError(t, f.Drop(form.SlotCover, pngFile))

	var saved domain.ToolInput
	require.NoError(t, f.Submit(context.Background(), capture(&saved)))

	require.Len(t, uploader.uploads, 2)
	assert.Equal(t, upload{"x.HTML", "text/html", "<h1>x</h1>", "My Tool"}, uploader.uploads[0])
	assert.Equal(t, "shot.png", uploader.uploads[1].filename)
	assert.Equal(t, "My Tool", uploader.uploads[1].nameHint)

	assert.Equal(t, "https://files.test/tool-files/x.HTML", saved.URL)
	assert.Equal(t, "https://files.test/tool-files/shot.png", saved.ImageURL)
	assert.Equal(t, []string{"a", "b", "c"}, saved.Tags)
	assert.Equal(t, "Ola", saved.Author)
}

func TestForm_SubmitValidatesBeforeNetwork(t *testing.T) {
	f, uploader, alerter := newForm()
	f.Open(nil)
	f.SetValues(form.Values{Title: "   ", Description: "D"})
	require.NoError(t, f.Drop(form.SlotCover, pngFile))

	called := false
	err := f.Submit(context.Background(), func(ctx context.Context, input domain.ToolInput) error {
		called = true
		return nil
	})

	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"title", "url"}, verr.Fields)
	assert.False(t, called)
	assert.Empty(t, uploader.uploads)
	assert.Equal(t, []string{"Please fill in: title, url"}, alerter.messages)
	assert.True(t, f.IsOpen())
	assert.False(t, f.Busy())
}

func TestForm_SubmitFailureAlertsAndStaysOpen(t *testing.T) {
	t.Run("save fails", func(t *testing.T) {
		f, _, alerter := newForm()
		f.Open(nil)
		f.SetValues(form.Values{Title: "T", Description: "D"})
		f.SetURL(form.SlotTool, "http://x")

		err := f.Submit(context.Background(), func(ctx context.Context, input domain.ToolInput) error {
			return errors.New("backend down")
		})

		assert.Error(t, err)
		assert.Equal(t, []string{form.MsgSaveFailed}, alerter.messages)
		assert.True(t, f.IsOpen())
		assert.False(t, f.Busy())
	})

	t.Run("upload fails", func(t *testing.T) {
		f, uploader, alerter := newForm()
		uploader.err = errors.New("bucket full")
		f.Open(nil)
		f.SetValues(form.Values{Title: "T", Description: "D"})
		require.NoError(t, f.Drop(form.SlotTool, htmlFile))

		called := false
		err := f.Submit(context.Background(), func(ctx context.Context, input domain.ToolInput) error {
			called = true
			return nil
		})

		assert.Error(t, err)
		assert.False(t, called, "save is skipped when an upload fails")
		assert.Equal(t, []string{form.MsgSaveFailed}, alerter.messages)
		assert.True(t, f.IsOpen())
		assert.False(t, f.Busy())
	})
}

func TestForm_SubmitRejectsWhileBusy(t *testing.T) {
	f, _, _ := newForm()
	f.Open(nil)
	f.SetValues(form.Values{Title: "T", Description: "D"})
	f.SetURL(form.SlotTool, "http://x")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.Submit(context.Background(), func(ctx context.Context, input domain.ToolInput) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	assert.True(t, f.Busy())
	assert.ErrorIs(t, f.Submit(context.Background(), capture(&domain.ToolInput{})), form.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.Busy())
}

func TestForm_SubmitClosed(t *testing.T) {
	f, _, _ := newForm()

	err := f.Submit(context.Background(), capture(&domain.ToolInput{}))

	assert.ErrorIs(t, err, form.ErrClosed)
}

func TestForm_EditKeepsExistingURLs(t *testing.T) {
	f, uploader, _ := newForm()
	f.Open(&domain.Tool{
		ID:          uuid.New(),
		Title:       "Old",
		Description: "D",
		URL:         "https://files.test/tool-files/Old_1.html",
		ImageURL:    "https://img.test/a.png",
		Tags:        []string{"x", "y"},
	})
	f.SetTitle("New")

	var saved domain.ToolInput
	require.NoError(t, f.Submit(context.Background(), capture(&saved)))

	assert.Empty(t, uploader.uploads)
	assert.Equal(t, "New", saved.Title)
	assert.Equal(t, "https://files.test/tool-files/Old_1.html", saved.URL)
	assert.Equal(t, "https://img.test/a.png", saved.ImageURL)
	assert.Equal(t, []string{"x", "y"}, saved.Tags)
}
