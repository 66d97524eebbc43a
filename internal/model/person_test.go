// ABOUTME: Tests for entity decoding at the normalization boundary
// ABOUTME: Covers id fallbacks, alias fields and empty-list normalization

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerson_UnmarshalNormalizesLists(t *testing.T) {
	var p Person
	err := json.Unmarshal([]byte(`{"person_id": 7, "names": "Ana", "lastnames": "Mora"}`), &p)
	require.NoError(t, err)

	assert.Equal(t, int64(7), p.ID)
	assert.NotNil(t, p.Files)
	assert.NotNil(t, p.RecordRelationships)
	assert.NotNil(t, p.Connections)
	assert.Empty(t, p.Files)
	assert.Equal(t, "Ana Mora", p.FullName())
}

func TestPerson_UnmarshalNullLists(t *testing.T) {
	var p Person
	err := json.Unmarshal([]byte(`{"person_id": 1, "files": null, "connections": null, "record_relationships": null}`), &p)
	require.NoError(t, err)

	assert.NotNil(t, p.Files)
	assert.NotNil(t, p.Connections)
	assert.NotNil(t, p.RecordRelationships)
}

func TestPerson_UnmarshalIDFallback(t *testing.T) {
	var p Person
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42}`), &p))
	assert.Equal(t, int64(42), p.ID)

	// person_id wins when both are present
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "person_id": 5}`), &p))
	assert.Equal(t, int64(5), p.ID)
}

func TestPerson_NestedRelationshipsResolveIDs(t *testing.T) {
	payload := `{
		"person_id": 3,
		"record_relationships": [
			{"id": 10, "type_relationship": "TESTIGO", "record": {"id": 99, "title": "Robo"}}
		],
		"connections": [
			{"id": 11, "relationship": "AMIGO", "person": {"id": 4, "names": "Luis"}}
		]
	}`

	var p Person
	require.NoError(t, json.Unmarshal([]byte(payload), &p))

	require.Len(t, p.RecordRelationships, 1)
	assert.Equal(t, int64(99), p.RecordRelationships[0].RecordID)
	assert.Equal(t, int64(3), p.RecordRelationships[0].PersonID)
	assert.Equal(t, RelationshipWitness, p.RecordRelationships[0].TypeRelationship)

	require.Len(t, p.Connections, 1)
	assert.Equal(t, int64(4), p.Connections[0].ConnectedPersonID)
	assert.Equal(t, ConnectionFriend, p.Connections[0].ConnectionType)
	assert.Equal(t, CategoryPersonal, p.Connections[0].Category())

	assert.Equal(t, []int64{99}, p.LinkedRecordIDs())
	assert.Equal(t, []int64{4}, p.ConnectedPersonIDs())
	assert.Equal(t, int64(4), p.Connections[0].Person.ID)
	assert.NotNil(t, p.Connections[0].Person.Files)
}

func TestRecord_UnmarshalIDFallback(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"id": 8, "title": "Estafa", "date": "2024-03-01"}`), &r))
	assert.Equal(t, int64(8), r.ID)
	assert.Equal(t, "2024-03-01", r.Date)
}

func TestFile_UnmarshalAliases(t *testing.T) {
	var f File
	require.NoError(t, json.Unmarshal([]byte(`{"id": 2, "mimetype": "image/png", "original_filename": "a.png"}`), &f))
	assert.Equal(t, int64(2), f.ID)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, FileKindImage, f.Kind())
}

func TestPerson_ImagesAndDocuments(t *testing.T) {
	p := Person{Files: []File{
		{ID: 1, OriginalFilename: "cara.JPG"},
		{ID: 2, MimeType: "application/pdf", OriginalFilename: "parte.pdf"},
		{ID: 3, MimeType: "image/webp", OriginalFilename: "blob"},
	}}

	images := p.Images()
	docs := p.Documents()
	require.Len(t, images, 2)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(2), docs[0].ID)
}

func TestStats_UnmarshalNormalizes(t *testing.T) {
	var s Stats
	require.NoError(t, json.Unmarshal([]byte(`{"total_records": 3}`), &s))
	assert.Equal(t, 3, s.TotalRecords)
	assert.NotNil(t, s.RecordsByType)
	assert.NotNil(t, s.RecentRecords)
}

func TestTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "rfc3339", input: `"2024-05-01T10:00:00Z"`},
		{name: "naive micro", input: `"2024-05-01T10:00:00.123456"`},
		{name: "naive", input: `"2024-05-01T10:00:00"`},
		{name: "space", input: `"2024-05-01 10:00:00"`},
		{name: "date only", input: `"2024-05-01"`},
		{name: "empty", input: `""`, zero: true},
		{name: "null", input: `null`, zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.Equal(t, tt.zero, ts.IsZero())
			if !tt.zero {
				assert.Equal(t, 2024, ts.Year())
			}
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}
