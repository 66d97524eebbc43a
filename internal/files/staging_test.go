// ABOUTME: Tests for file staging, preview release and batch upload
// ABOUTME: Uploads run against the in-process backend

package files

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/antecedentes/internal/apitest"
	"github.com/2389/antecedentes/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStaging_AddAndClassify(t *testing.T) {
	s := NewStaging(nil)
	defer s.Close()

	doc, err := s.Add(writeFile(t, "acta.pdf", "%PDF"), "acta")
	require.NoError(t, err)
	assert.Equal(t, model.FileKindDocument, doc.Kind)
	assert.Empty(t, doc.Preview)

	img, err := s.Add(writeFile(t, "rostro.JPG", "jpeg bytes"), "foto")
	require.NoError(t, err)
	assert.Equal(t, model.FileKindImage, img.Kind)
	require.NotEmpty(t, img.Preview)
	data, err := os.ReadFile(img.Preview)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "acta.pdf", items[0].Name)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestStaging_Rejections(t *testing.T) {
	s := NewStaging(nil)
	defer s.Close()

	_, err := s.Add(filepath.Join(t.TempDir(), "missing.txt"), "")
	assert.Error(t, err)

	_, err = s.Add(t.TempDir(), "")
	assert.Error(t, err)

	big := filepath.Join(t.TempDir(), "big.bin")
	f, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())
	_, err = s.Add(big, "")
	assert.ErrorIs(t, err, ErrTooLarge)

	assert.ErrorIs(t, s.Remove(42), ErrNotStaged)
	assert.ErrorIs(t, s.SetDescription(42, "x"), ErrNotStaged)
}

func TestStaging_RemoveReleasesPreview(t *testing.T) {
	s := NewStaging(nil)
	defer s.Close()

	img, err := s.Add(writeFile(t, "a.png", "png"), "")
	require.NoError(t, err)
	preview := img.Preview

	require.NoError(t, s.Remove(img.ID))
	_, err = os.Stat(preview)
	assert.True(t, os.IsNotExist(err), "preview removed")
	assert.Zero(t, s.Len())
}

func TestStaging_CloseReleasesEverything(t *testing.T) {
	s := NewStaging(nil)
	img, err := s.Add(writeFile(t, "a.webp", "webp"), "")
	require.NoError(t, err)
	dir := filepath.Dir(img.Preview)

	require.NoError(t, s.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, s.Close(), "idempotent")

	_, err = s.Add(writeFile(t, "b.txt", "b"), "")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStaging_SetDescription(t *testing.T) {
	s := NewStaging(nil)
	defer s.Close()
	item, err := s.Add(writeFile(t, "a.txt", "a"), "old")
	require.NoError(t, err)

	require.NoError(t, s.SetDescription(item.ID, "new"))
	assert.Equal(t, "new", s.Items()[0].Description)
}

type flakyUploader struct {
	fail  string
	names []string
}

func (u *flakyUploader) Upload(_ context.Context, personID int64, filename string, content io.Reader, description string) (*model.File, error) {
	u.names = append(u.names, filename)
	if filename == u.fail {
		return nil, errors.New("disk full")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	return &model.File{PersonID: personID, OriginalFilename: filename, FileSize: int64(len(data)), Description: description}, nil
}

func TestStaging_UploadPartialFailure(t *testing.T) {
	s := NewStaging(nil)
	defer s.Close()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		_, err := s.Add(writeFile(t, name, strings.Repeat("x", 3)), "desc "+name)
		require.NoError(t, err)
	}

	up := &flakyUploader{fail: "b.txt"}
	report := s.Upload(context.Background(), up, 7)

	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, up.names)
	require.Len(t, report.Uploaded, 2)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "b.txt")
	assert.Equal(t, "desc a.txt", report.Uploaded[0].Description)

	remaining := s.Items()
	require.Len(t, remaining, 1, "failed files stay staged")
	assert.Equal(t, "b.txt", remaining[0].Name)
}

func TestStaging_UploadToBackend(t *testing.T) {
	b := apitest.NewBackend(t)
	person := b.Person(t, "0102030405", "Ana")
	c := b.AdminClient(t)

	s := NewStaging(nil)
	defer s.Close()
	_, err := s.Add(writeFile(t, "declaracion.txt", "texto"), "declaración")
	require.NoError(t, err)
	_, err = s.Add(writeFile(t, "foto.png", "\x89PNG\r\n\x1a\n"), "foto")
	require.NoError(t, err)

	report := s.Upload(context.Background(), c.Files, person.ID)
	assert.Len(t, report.Uploaded, 2)
	assert.Zero(t, report.Failed)
	assert.Zero(t, s.Len())

	got, err := c.Persons.Get(context.Background(), person.ID)
	require.NoError(t, err)
	assert.Len(t, got.Documents(), 1)
	assert.Len(t, got.Images(), 1)
}
