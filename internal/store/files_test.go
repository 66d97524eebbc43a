// ABOUTME: Tests for file metadata persistence
// ABOUTME: Covers ownership checks and listing order

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/antecedentes/internal/model"
)

func TestCreateFile(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPerson(t, s, "0912345678", "Ana", "Vera")

	f := &StoredFile{
		File:       model.File{PersonID: p.ID, OriginalFilename: "cedula.pdf", MimeType: "application/pdf", FileSize: 2048, Description: " copia "},
		StoredName: "1b2c.pdf",
	}
	require.NoError(t, s.CreateFile(ctx, f))
	assert.NotZero(t, f.ID)

	got, err := s.GetFile(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "cedula.pdf", got.OriginalFilename)
	assert.Equal(t, "copia", got.Description)
	assert.Equal(t, "1b2c.pdf", got.StoredName)
	assert.Equal(t, model.FileKindDocument, got.Kind())

	err = s.CreateFile(ctx, &StoredFile{File: model.File{PersonID: 999, OriginalFilename: "x"}, StoredName: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.DeleteFile(ctx, f.ID))
	assert.Equal(t, ErrNotFound, s.DeleteFile(ctx, f.ID))
}
