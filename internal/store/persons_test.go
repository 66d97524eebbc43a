// ABOUTME: Tests for person persistence and search
// ABOUTME: Covers unique identification, detail assembly and cascade delete

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/antecedentes/internal/model"
)

func TestCreatePerson(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePerson(ctx, model.PersonInput{
		Identification:     " 0912345678 ",
		IdentificationType: "cedula",
		Names:              "María José",
		Lastnames:          "Pérez Ruiz",
		Address:            "Av. 9 de Octubre",
		Province:           "Guayas",
		Country:            "Ecuador",
	})
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, "0912345678", p.Identification)
	assert.Equal(t, "CEDULA", p.IdentificationType)
	assert.False(t, p.CreatedAt.IsZero())
	assert.NotNil(t, p.Files)
	assert.NotNil(t, p.RecordRelationships)
	assert.NotNil(t, p.Connections)
}

func TestCreatePerson_DuplicateIdentification(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestPerson(t, s, "0912345678", "Ana", "Vera")

	_, err := s.CreatePerson(ctx, model.PersonInput{
		Identification: "0912345678", IdentificationType: "CEDULA", Names: "Otra", Lastnames: "Persona",
	})
	assert.True(t, errors.Is(err, ErrDuplicate))

	persons, err := s.ListPersons(ctx)
	require.NoError(t, err)
	assert.Len(t, persons, 1)
}

func TestGetPerson_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetPerson(context.Background(), 999)
	assert.Equal(t, ErrNotFound, err)
}

func TestUpdatePerson(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := createTestPerson(t, s, "0912345678", "Ana", "Vera")
	b := createTestPerson(t, s, "0987654321", "Luis", "Mora")

	in := model.PersonInputFrom(a)
	in.Address = "Calle 10"
	got, err := s.UpdatePerson(ctx, a.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Calle 10", got.Address)

	in = model.PersonInputFrom(b)
	in.Identification = a.Identification
	_, err = s.UpdatePerson(ctx, b.ID, in)
	assert.True(t, errors.Is(err, ErrDuplicate))

	_, err = s.UpdatePerson(ctx, 999, in)
	assert.Equal(t, ErrNotFound, err)
}

func TestSearchPersons(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestPerson(t, s, "0912345678", "Ana", "Vera")
	createTestPerson(t, s, "0987654321", "Anabel", "Mora")
	createTestPerson(t, s, "1712345678", "Luis", "Vera")

	tests := []struct {
		name   string
		filter PersonFilter
		want   int
	}{
		{name: "names substring", filter: PersonFilter{Names: "ana"}, want: 2},
		{name: "lastnames", filter: PersonFilter{Lastnames: "VERA"}, want: 2},
		{name: "combined", filter: PersonFilter{Names: "ana", Lastnames: "vera"}, want: 1},
		{name: "identification prefix", filter: PersonFilter{Identification: "09"}, want: 2},
		{name: "wildcards are literal", filter: PersonFilter{Names: "%"}, want: 0},
		{name: "no match", filter: PersonFilter{Names: "zzz"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchPersons(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestGetPerson_Detail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := createTestPerson(t, s, "0912345678", "Ana", "Vera")
	b := createTestPerson(t, s, "0987654321", "Luis", "Mora")
	r := createTestRecord(t, s, "Robo en bodega", model.RecordTypeTheft, "2024-03-01")

	_, err := s.LinkRecord(ctx, a.ID, r.ID, model.RelationshipAccused)
	require.NoError(t, err)
	_, err = s.ConnectPersons(ctx, a.ID, b.ID, model.ConnectionComplice)
	require.NoError(t, err)
	require.NoError(t, s.CreateFile(ctx, &StoredFile{
		File:       model.File{PersonID: a.ID, OriginalFilename: "foto.jpg", MimeType: "image/jpeg", FileSize: 10},
		StoredName: "abc.jpg",
	}))

	got, err := s.GetPerson(ctx, a.ID)
	require.NoError(t, err)

	require.Len(t, got.RecordRelationships, 1)
	assert.Equal(t, r.ID, got.RecordRelationships[0].RecordID)
	assert.Equal(t, "Robo en bodega", got.RecordRelationships[0].Record.Title)
	require.Len(t, got.Connections, 1)
	assert.Equal(t, b.ID, got.Connections[0].ConnectedPersonID)
	assert.Equal(t, "Luis", got.Connections[0].Person.Names)
	require.Len(t, got.Files, 1)
	assert.Equal(t, model.FileKindImage, got.Files[0].Kind())

	// The connection is visible from the other side too.
	other, err := s.GetPerson(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, other.Connections, 1)
	assert.Equal(t, a.ID, other.Connections[0].ConnectedPersonID)
}

func TestDeletePerson_Cascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := createTestPerson(t, s, "0912345678", "Ana", "Vera")
	b := createTestPerson(t, s, "0987654321", "Luis", "Mora")
	r := createTestRecord(t, s, "Estafa", model.RecordTypeFraud, "")

	_, err := s.LinkRecord(ctx, a.ID, r.ID, model.RelationshipVictim)
	require.NoError(t, err)
	_, err = s.ConnectPersons(ctx, a.ID, b.ID, model.ConnectionFamily)
	require.NoError(t, err)

	require.NoError(t, s.DeletePerson(ctx, a.ID))
	assert.Equal(t, ErrNotFound, s.DeletePerson(ctx, a.ID))

	other, err := s.GetPerson(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Connections)

	stats, err := s.RecordStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPersons)
	assert.Equal(t, 1, stats.TotalRecords)
}
