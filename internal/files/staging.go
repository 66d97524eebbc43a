// ABOUTME: Client-side staging of files before a batch upload to a person
// ABOUTME: Image previews are temp copies released on remove or close

// Package files stages local files with descriptions and uploads them to a
// person one by one, so a failing file never blocks the others.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/2389/antecedentes/internal/api"
	"github.com/2389/antecedentes/internal/model"
)

// MaxFileSize matches the backend upload limit.
const MaxFileSize = 20 << 20

var (
	// ErrTooLarge is returned when staging a file over MaxFileSize.
	ErrTooLarge = errors.New("file exceeds 20MB")
	// ErrNotStaged is returned for an unknown staging id.
	ErrNotStaged = errors.New("file not staged")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("staging closed")
)

// Staged is one file waiting to be uploaded.
type Staged struct {
	ID          int
	Path        string
	Name        string
	Size        int64
	Kind        model.FileKind
	Description string

	// Preview is the path of the image preview, empty for documents or once released.
	Preview string
}

// Staging holds staged files in the order they were added.
type Staging struct {
	mu     sync.Mutex
	dir    string
	items  []*Staged
	nextID int
	closed bool
	logger *slog.Logger
}

// NewStaging creates an empty staging area. Pass nil logger for default.
func NewStaging(logger *slog.Logger) *Staging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Staging{nextID: 1, logger: logger.With("component", "staging")}
}

// Add stages the file at path with a description.
func (s *Staging) Add(path, description string) (*Staged, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("staging %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("staging %s: is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("staging %s: %w", path, ErrTooLarge)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	name := filepath.Base(path)
	item := &Staged{
		ID:          s.nextID,
		Path:        path,
		Name:        name,
		Size:        info.Size(),
		Kind:        model.ClassifyFile("", name),
		Description: description,
	}
	if item.Kind == model.FileKindImage {
		preview, err := s.makePreview(path)
		if err != nil {
			return nil, err
		}
		item.Preview = preview
	}

	s.nextID++
	s.items = append(s.items, item)
	s.logger.Debug("staged file", "id", item.ID, "name", name, "kind", item.Kind)
	return item, nil
}

// makePreview copies an image into the staging directory. Callers hold mu.
func (s *Staging) makePreview(path string) (string, error) {
	if s.dir == "" {
		dir, err := os.MkdirTemp("", "antecedentes-previews-")
		if err != nil {
			return "", fmt.Errorf("creating preview directory: %w", err)
		}
		s.dir = dir
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, "preview-*"+filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("creating preview: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing preview: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing preview: %w", err)
	}
	return dst.Name(), nil
}

// SetDescription changes the description of a staged file.
func (s *Staging) SetDescription(id int, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			it.Description = description
			return nil
		}
	}
	return ErrNotStaged
}

// Remove unstages a file and releases its preview.
func (s *Staging) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == id {
			s.release(it)
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotStaged
}

// Items returns copies of the staged files.
func (s *Staging) Items() []Staged {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Staged, len(s.items))
	for i, it := range s.items {
		out[i] = *it
	}
	return out
}

// Len is the number of staged files.
func (s *Staging) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close releases every preview and the preview directory. It is idempotent.
func (s *Staging) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, it := range s.items {
		s.release(it)
	}
	s.items = nil
	if s.dir != "" {
		if err := os.RemoveAll(s.dir); err != nil {
			return fmt.Errorf("removing preview directory: %w", err)
		}
	}
	return nil
}

// release deletes the preview of it. Callers hold mu.
func (s *Staging) release(it *Staged) {
	if it.Preview == "" {
		return
	}
	if err := os.Remove(it.Preview); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("releasing preview", "path", it.Preview, "error", err)
	}
	it.Preview = ""
}

// Uploader sends one file to a person.
type Uploader interface {
	Upload(ctx context.Context, personID int64, filename string, content io.Reader, description string) (*model.File, error)
}

// UploadReport is the outcome of a batch upload.
type UploadReport struct {
	Uploaded []model.File
	Failed   int
	Warnings []string
}

// Upload sends every staged file to personID, one at a time. Uploaded files
// are unstaged; failed ones stay staged with a warning naming them.
func (s *Staging) Upload(ctx context.Context, up Uploader, personID int64) UploadReport {
	report := UploadReport{Uploaded: []model.File{}, Warnings: []string{}}
	for _, it := range s.Items() {
		f, err := uploadOne(ctx, up, personID, it)
		if err != nil {
			report.Failed++
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", it.Name, api.Message(err)))
			s.logger.Warn("upload failed", "name", it.Name, "person_id", personID, "error", err)
			continue
		}
		report.Uploaded = append(report.Uploaded, *f)
		if err := s.Remove(it.ID); err != nil && !errors.Is(err, ErrNotStaged) {
			s.logger.Warn("unstaging uploaded file", "name", it.Name, "error", err)
		}
	}
	return report
}

func uploadOne(ctx context.Context, up Uploader, personID int64, it Staged) (*model.File, error) {
	f, err := os.Open(it.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", it.Path, err)
	}
	defer f.Close()
	return up.Upload(ctx, personID, it.Name, f, it.Description)
}
