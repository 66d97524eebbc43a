// ABOUTME: Person-record relationships and person-person connections
// ABOUTME: Each pair links at most once; connections are unordered pairs

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/2389/antecedentes/internal/model"
)

// LinkRecord links a record to a person. Returns ErrNotFound when either
// side is missing and ErrDuplicate when the pair is already linked.
func (s *SQLiteStore) LinkRecord(ctx context.Context, personID, recordID int64, rel model.RelationshipType) (*model.PersonRecordRelationship, error) {
	if err := s.requireRows(ctx, "persons", personID, "records", recordID); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO person_records (person_id, record_id, type_relationship, created_at)
		VALUES (?, ?, ?, ?)
	`, personID, recordID, string(rel), nowString())
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("record %d already linked to person %d: %w", recordID, personID, ErrDuplicate)
		}
		return nil, fmt.Errorf("inserting person record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading link id: %w", err)
	}

	s.logger.Debug("linked record", "person_id", personID, "record_id", recordID, "type", rel)

	rels, err := s.queryPersonRecords(ctx, `WHERE pr.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, ErrNotFound
	}
	return &rels[0], nil
}

// UnlinkRecord removes the link between a person and a record.
func (s *SQLiteStore) UnlinkRecord(ctx context.Context, personID, recordID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM person_records WHERE person_id = ? AND record_id = ?`, personID, recordID)
	if err != nil {
		return fmt.Errorf("deleting person record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPersonRecords returns the person's record links with the nested record.
func (s *SQLiteStore) ListPersonRecords(ctx context.Context, personID int64) ([]model.PersonRecordRelationship, error) {
	return s.queryPersonRecords(ctx, `WHERE pr.person_id = ?`, personID)
}

func (s *SQLiteStore) queryPersonRecords(ctx context.Context, where string, args ...any) ([]model.PersonRecordRelationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pr.id, pr.person_id, pr.type_relationship, pr.created_at, `+recordColumns+`
		FROM person_records pr
		JOIN records r ON r.id = pr.record_id
		`+where+`
		ORDER BY pr.created_at, pr.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying person records: %w", err)
	}
	defer rows.Close()

	out := []model.PersonRecordRelationship{}
	for rows.Next() {
		var rel model.PersonRecordRelationship
		var typ, createdAt string
		var r model.Record
		var rCreated, rUpdated string
		err := rows.Scan(
			&rel.ID, &rel.PersonID, &typ, &createdAt,
			&r.ID, &r.Title, &r.Content, &r.Observations, &r.TypeRecord, &r.Date, &rCreated, &rUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning person record: %w", err)
		}
		if rel.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTimestamp(rCreated); err != nil {
			return nil, err
		}
		if r.UpdatedAt, err = parseTimestamp(rUpdated); err != nil {
			return nil, err
		}
		rel.TypeRelationship = model.RelationshipType(typ)
		rel.RecordID = r.ID
		rel.Record = &r
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating person records: %w", err)
	}
	return out, nil
}

// ConnectPersons connects two persons. The pair is unordered: connecting
// B to A after A to B is a duplicate.
func (s *SQLiteStore) ConnectPersons(ctx context.Context, personID, otherID int64, t model.ConnectionType) (*model.PersonConnection, error) {
	if personID == otherID {
		return nil, ErrSelfLink
	}
	if err := s.requireRows(ctx, "persons", personID, "persons", otherID); err != nil {
		return nil, err
	}

	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM person_connections
		WHERE (person_id = ? AND connected_person_id = ?) OR (person_id = ? AND connected_person_id = ?)
	`, personID, otherID, otherID, personID).Scan(&one)
	if err == nil {
		return nil, fmt.Errorf("persons %d and %d already connected: %w", personID, otherID, ErrDuplicate)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("checking connection: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO person_connections (person_id, connected_person_id, connection_type, created_at)
		VALUES (?, ?, ?, ?)
	`, personID, otherID, string(t), nowString())
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("persons %d and %d already connected: %w", personID, otherID, ErrDuplicate)
		}
		return nil, fmt.Errorf("inserting connection: %w", err)
	}

	s.logger.Debug("connected persons", "person_id", personID, "other_id", otherID, "type", t)

	conns, err := s.ListConnections(ctx, personID)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		if conns[i].ConnectedPersonID == otherID {
			return &conns[i], nil
		}
	}
	return nil, ErrNotFound
}

// DisconnectPersons removes the connection between two persons in either direction.
func (s *SQLiteStore) DisconnectPersons(ctx context.Context, personID, otherID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM person_connections
		WHERE (person_id = ? AND connected_person_id = ?) OR (person_id = ? AND connected_person_id = ?)
	`, personID, otherID, otherID, personID)
	if err != nil {
		return fmt.Errorf("deleting connection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListConnections returns the person's connections seen from its side: the
// connected person is always the other end, nested without relations.
func (s *SQLiteStore) ListConnections(ctx context.Context, personID int64) ([]model.PersonConnection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.connection_type, c.created_at, `+prefixed("p", personColumns)+`
		FROM person_connections c
		JOIN persons p ON p.id = CASE WHEN c.person_id = ? THEN c.connected_person_id ELSE c.person_id END
		WHERE c.person_id = ? OR c.connected_person_id = ?
		ORDER BY c.created_at, c.id
	`, personID, personID, personID)
	if err != nil {
		return nil, fmt.Errorf("querying connections: %w", err)
	}
	defer rows.Close()

	out := []model.PersonConnection{}
	for rows.Next() {
		var c model.PersonConnection
		var typ, createdAt string
		var p model.Person
		var pCreated, pUpdated string
		err := rows.Scan(
			&c.ID, &typ, &createdAt,
			&p.ID, &p.Identification, &p.IdentificationType, &p.Names, &p.Lastnames,
			&p.Address, &p.Province, &p.Country, &p.Observations, &pCreated, &pUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}
		if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTimestamp(pCreated); err != nil {
			return nil, err
		}
		if p.UpdatedAt, err = parseTimestamp(pUpdated); err != nil {
			return nil, err
		}
		p.Files = []model.File{}
		p.RecordRelationships = []model.PersonRecordRelationship{}
		p.Connections = []model.PersonConnection{}

		c.PersonID = personID
		c.ConnectedPersonID = p.ID
		c.ConnectionType = model.ConnectionType(typ)
		c.Person = &p
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connections: %w", err)
	}
	return out, nil
}

// requireRows returns ErrNotFound unless both rows exist.
func (s *SQLiteStore) requireRows(ctx context.Context, tableA string, idA int64, tableB string, idB int64) error {
	for _, r := range []struct {
		table string
		id    int64
	}{{tableA, idA}, {tableB, idB}} {
		ok, err := s.exists(ctx, r.table, r.id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s %d: %w", r.table, r.id, ErrNotFound)
		}
	}
	return nil
}

// prefixed qualifies each column in a comma-separated list with alias.
func prefixed(alias, columns string) string {
	var out []string
	for _, c := range strings.Split(columns, ",") {
		out = append(out, alias+"."+strings.TrimSpace(c))
	}
	return strings.Join(out, ", ")
}
