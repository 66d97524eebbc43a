// ABOUTME: Tests for person-record links and person-person connections
// ABOUTME: Covers duplicate pairs, missing sides and unordered connections

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/antecedentes/internal/model"
)

func TestLinkRecord(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPerson(t, s, "0912345678", "Ana", "Vera")
	r := createTestRecord(t, s, "Robo", model.RecordTypeTheft, "")

	rel, err := s.LinkRecord(ctx, p.ID, r.ID, model.RelationshipSuspect)
	require.NoError(t, err)
	assert.Equal(t, p.ID, rel.PersonID)
	assert.Equal(t, r.ID, rel.RecordID)
	assert.Equal(t, model.RelationshipSuspect, rel.TypeRelationship)
	require.NotNil(t, rel.Record)

	_, err = s.LinkRecord(ctx, p.ID, r.ID, model.RelationshipWitness)
	assert.True(t, errors.Is(err, ErrDuplicate))

	rels, err := s.ListPersonRecords(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1, "duplicate link must not be stored")
	assert.Equal(t, model.RelationshipSuspect, rels[0].TypeRelationship)

	_, err = s.LinkRecord(ctx, p.ID, 999, model.RelationshipSuspect)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.LinkRecord(ctx, 999, r.ID, model.RelationshipSuspect)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUnlinkRecord(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestPerson(t, s, "0912345678", "Ana", "Vera")
	r := createTestRecord(t, s, "Robo", model.RecordTypeTheft, "")

	_, err := s.LinkRecord(ctx, p.ID, r.ID, model.RelationshipSuspect)
	require.NoError(t, err)

	require.NoError(t, s.UnlinkRecord(ctx, p.ID, r.ID))
	assert.Equal(t, ErrNotFound, s.UnlinkRecord(ctx, p.ID, r.ID))
}

func TestConnectPersons(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := createTestPerson(t, s, "0912345678", "Ana", "Vera")
	b := createTestPerson(t, s, "0987654321", "Luis", "Mora")

	c, err := s.ConnectPersons(ctx, a.ID, b.ID, model.ConnectionGangLeader)
	require.NoError(t, err)
	assert.Equal(t, a.ID, c.PersonID)
	assert.Equal(t, b.ID, c.ConnectedPersonID)
	assert.Equal(t, model.CategoryCriminal, c.Category())

	_, err = s.ConnectPersons(ctx, a.ID, b.ID, model.ConnectionFriend)
	assert.True(t, errors.Is(err, ErrDuplicate))
	_, err = s.ConnectPersons(ctx, b.ID, a.ID, model.ConnectionFriend)
	assert.True(t, errors.Is(err, ErrDuplicate), "reverse direction is the same pair")

	_, err = s.ConnectPersons(ctx, a.ID, a.ID, model.ConnectionFriend)
	assert.Equal(t, ErrSelfLink, err)

	_, err = s.ConnectPersons(ctx, a.ID, 999, model.ConnectionFriend)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDisconnectPersons_EitherDirection(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := createTestPerson(t, s, "0912345678", "Ana", "Vera")
	b := createTestPerson(t, s, "0987654321", "Luis", "Mora")

	_, err := s.ConnectPersons(ctx, a.ID, b.ID, model.ConnectionNeighbor)
	require.NoError(t, err)

	require.NoError(t, s.DisconnectPersons(ctx, b.ID, a.ID))
	conns, err := s.ListConnections(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, conns)

	assert.Equal(t, ErrNotFound, s.DisconnectPersons(ctx, a.ID, b.ID))
}
