// ABOUTME: Batch link helpers bound to the person service
// ABOUTME: One request per selected record or person, in selection order

package linking

import (
	"context"

	"github.com/2389/antecedentes/internal/api"
	"github.com/2389/antecedentes/internal/model"
)

// PersonLinker is the subset of the person service the helpers call.
type PersonLinker interface {
	LinkRecord(ctx context.Context, personID, recordID int64, relationship model.RelationshipType) (*model.PersonRecordRelationship, error)
	LinkPerson(ctx context.Context, id, otherID int64, connectionType model.ConnectionType) (*model.PersonConnection, error)
}

// LinkRecords links each record to personID with the same relationship type.
func LinkRecords(ctx context.Context, persons PersonLinker, personID int64, recordIDs []int64, rel model.RelationshipType) Report {
	return LinkAll(ctx, recordIDs, func(ctx context.Context, recordID int64) error {
		_, err := persons.LinkRecord(ctx, personID, recordID, rel)
		return err
	})
}

// LinkPersons connects personID to each other person with the same connection type.
func LinkPersons(ctx context.Context, persons PersonLinker, personID int64, otherIDs []int64, t model.ConnectionType) Report {
	return LinkAll(ctx, otherIDs, func(ctx context.Context, otherID int64) error {
		_, err := persons.LinkPerson(ctx, personID, otherID, t)
		return err
	})
}

// LinkedIDs returns the ids of the records linked to a person and of the
// persons connected to it.
func LinkedIDs(l *api.Linked) (records, persons []int64) {
	records = make([]int64, 0, len(l.Records))
	for _, r := range l.Records {
		records = append(records, r.RecordID)
	}
	persons = make([]int64, 0, len(l.Connections))
	for _, c := range l.Connections {
		persons = append(persons, c.ConnectedPersonID)
	}
	return records, persons
}

// RecordID identifies a record candidate.
func RecordID(r model.Record) int64 { return r.ID }

// PersonID identifies a person candidate.
func PersonID(p model.Person) int64 { return p.ID }
