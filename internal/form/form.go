// Package form holds the state of the create/edit tool form and turns a
// submission into uploads plus one save call.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/straye-as/toolshelf/internal/domain"
)

// Messages shown to the user
const (
	MsgSaveFailed      = "Failed to save tool"
	MsgInvalidToolFile = "Please select an HTML file (.html or .htm)"
	MsgInvalidCover    = "Please select an image file"
)

var (
	ErrBusy        = errors.New("form is busy")
	ErrClosed      = errors.New("form is not open")
	ErrInvalidFile = errors.New("invalid file")
)

// Mode is the form's current purpose
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Alerter shows a blocking message to the user
type Alerter interface {
	Alert(message string)
}

// Uploader stores a file and returns where it can be reached
type Uploader interface {
	UploadFile(ctx context.Context, file domain.FileUpload, nameHint string) (*domain.UploadFileResponse, error)
}

// SaveFunc persists a submitted tool
type SaveFunc func(ctx context.Context, input domain.ToolInput) error

// ValidationError lists the required fields left blank
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Please fill in: " + strings.Join(e.Fields, ", ")
}

// Values are the form's text fields
type Values struct {
	Title       string
	Description string
	Author      string
	Tags        string
}

// submission is validated before anything leaves the process
type submission struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	URL         string `validate:"required"`
}

// Form is safe for concurrent use. Submit releases the lock while uploads
// and the save call are in flight, and rejects a second submit meanwhile.
type Form struct {
	uploader Uploader
	alerter  Alerter
	validate *validator.Validate
	logger   *zap.Logger

	mu      sync.Mutex
	open    bool
	busy    bool
	mode    Mode
	editing *domain.Tool
	values  Values
	sources [2]FileSource
}

// New creates a closed form
func New(uploader Uploader, alerter Alerter, logger *zap.Logger) *Form {
	return &Form{
		uploader: uploader,
		alerter:  alerter,
		validate: validator.New(),
		logger:   logger,
	}
}

// Open resets the form. With a nil seed it enters create mode with every
// field empty; otherwise it enters edit mode populated from seed.
func (f *Form) Open(seed *domain.Tool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.open = true
	f.sources = [2]FileSource{}
	if seed == nil {
		f.mode = ModeCreate
		f.editing = nil
		f.values = Values{}
		return
	}

	editing := *seed
	editing.Tags = append([]string(nil), seed.Tags...)
	f.mode = ModeEdit
	f.editing = &editing
	f.values = Values{
		Title:       seed.Title,
		Description: seed.Description,
		Author:      seed.Author,
		Tags:        domain.JoinTags(seed.Tags),
	}
	f.sources[SlotTool] = External(seed.URL)
	f.sources[SlotCover] = External(seed.ImageURL)
}

// Close discards the form without saving
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// IsOpen reports whether the form is shown
func (f *Form) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Busy reports whether a submit is in flight
func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Mode returns the current mode
func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Editing returns a copy of the tool being edited, or nil in create mode
func (f *Form) Editing() *domain.Tool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editing == nil {
		return nil
	}
	t := *f.editing
	return &t
}

// Values returns the text fields
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// SetValues replaces the text fields
func (f *Form) SetValues(v Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = v
}

// SetTitle sets the title field
func (f *Form) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Title = title
}

// SetDescription sets the description field
func (f *Form) SetDescription(description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Description = description
}

// SetAuthor sets the author field
func (f *Form) SetAuthor(author string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Author = author
}

// SetTags sets the comma-separated tags field
func (f *Form) SetTags(tags string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Tags = tags
}

// Source returns what a slot currently holds
func (f *Form) Source(slot Slot) FileSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sources[slot]
}

// SetURL types an external URL into a slot. It returns false and changes
// nothing while a file is attached, since the file wins.
func (f *Form) SetURL(slot Slot, url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sources[slot].HasFile() {
		return false
	}
	f.sources[slot] = External(url)
	return true
}

// Clear empties a slot
func (f *Form) Clear(slot Slot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources[slot] = Unset()
}

// Pick attaches a file chosen with the file picker
func (f *Form) Pick(slot Slot, file File) error {
	return f.attach(slot, file)
}

// Drop attaches a file dragged onto a slot
func (f *Form) Drop(slot Slot, file File) error {
	return f.attach(slot, file)
}

// Paste attaches the first image among the clipboard items to the cover
// slot. It reports whether an image was found.
func (f *Form) Paste(items []File) bool {
	for _, item := range items {
		if isImage(item.ContentType) {
			return f.attach(SlotCover, item) == nil
		}
	}
	return false
}

func (f *Form) attach(slot Slot, file File) error {
	if !slot.accepts(file) {
		msg := MsgInvalidCover
		if slot == SlotTool {
			msg = MsgInvalidToolFile
		}
		f.alerter.Alert(msg)
		return fmt.Errorf("%w: %s rejected by %s slot", ErrInvalidFile, file.Name, slot)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources[slot] = Uploaded(file)
	return nil
}

// Submit validates the form, uploads any attached files using the title as
// name hint, and hands the assembled tool to save. The form closes on
// success. On failure the user is alerted and the form stays open.
func (f *Form) Submit(ctx context.Context, save SaveFunc) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	f.busy = true
	values := f.values
	sources := f.sources
	f.mu.Unlock()

	err := f.submit(ctx, values, sources, save)

	f.mu.Lock()
	f.busy = false
	if err == nil {
		f.open = false
	}
	f.mu.Unlock()

	return err
}

func (f *Form) submit(ctx context.Context, values Values, sources [2]FileSource, save SaveFunc) error {
	title := strings.TrimSpace(values.Title)

	if err := f.check(title, values.Description, sources[SlotTool]); err != nil {
		f.alerter.Alert(err.Error())
		return err
	}

	input := domain.ToolInput{
		Title:       title,
		Description: values.Description,
		Tags:        domain.ParseTags(values.Tags),
		Author:      strings.TrimSpace(values.Author),
	}

	var err error
	if input.URL, err = f.resolve(ctx, sources[SlotTool], title); err == nil {
		input.ImageURL, err = f.resolve(ctx, sources[SlotCover], title)
	}
	if err == nil {
		err = save(ctx, input)
	}
	if err != nil {
		f.logger.Warn("failed to save tool", zap.String("title", title), zap.Error(err))
		f.alerter.Alert(MsgSaveFailed)
		return err
	}
	return nil
}

func (f *Form) check(title, description string, tool FileSource) error {
	s := submission{
		Title:       title,
		Description: strings.TrimSpace(description),
		URL:         tool.URL(),
	}
	if tool.HasFile() {
		s.URL = tool.File().Name
	}

	err := f.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return &ValidationError{Fields: fields}
}

func (f *Form) resolve(ctx context.Context, src FileSource, nameHint string) (string, error) {
	switch src.Kind() {
	case SourceUploaded:
		resp, err := f.uploader.UploadFile(ctx, src.File().upload(), nameHint)
		if err != nil {
			return "", fmt.Errorf("upload %s: %w", src.File().Name, err)
		}
		return resp.URL, nil
	case SourceExternal:
		return src.URL(), nil
	default:
		return "", nil
	}
}
