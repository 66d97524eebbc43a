// ABOUTME: Person persistence: CRUD, substring search and detail assembly
// ABOUTME: Detail loads files, record relationships and connections

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/2389/antecedentes/internal/model"
)

const personColumns = `id, identification, identification_type, names, lastnames,
	address, province, country, observations, created_at, updated_at`

func scanPerson(row rowScanner) (*model.Person, error) {
	var p model.Person
	var createdAt, updatedAt string
	err := row.Scan(
		&p.ID,
		&p.Identification,
		&p.IdentificationType,
		&p.Names,
		&p.Lastnames,
		&p.Address,
		&p.Province,
		&p.Country,
		&p.Observations,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	p.Files = []model.File{}
	p.RecordRelationships = []model.PersonRecordRelationship{}
	p.Connections = []model.PersonConnection{}
	return &p, nil
}

// CreatePerson inserts a person. Returns ErrDuplicate when the
// identification is already registered.
func (s *SQLiteStore) CreatePerson(ctx context.Context, in model.PersonInput) (*model.Person, error) {
	now := nowString()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (identification, identification_type, names, lastnames,
			address, province, country, observations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		strings.TrimSpace(in.Identification),
		strings.ToUpper(strings.TrimSpace(in.IdentificationType)),
		strings.TrimSpace(in.Names),
		strings.TrimSpace(in.Lastnames),
		in.Address,
		in.Province,
		in.Country,
		in.Observations,
		now,
		now,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("identification %s: %w", in.Identification, ErrDuplicate)
		}
		return nil, fmt.Errorf("inserting person: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading person id: %w", err)
	}

	s.logger.Debug("created person", "id", id)
	return s.GetPerson(ctx, id)
}

// GetPerson retrieves a person with files, record relationships and connections.
// Returns ErrNotFound if the person doesn't exist.
func (s *SQLiteStore) GetPerson(ctx context.Context, id int64) (*model.Person, error) {
	p, err := scanPerson(s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying person: %w", err)
	}

	files, err := s.ListPersonFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		p.Files = append(p.Files, f.File)
	}

	if p.RecordRelationships, err = s.ListPersonRecords(ctx, id); err != nil {
		return nil, err
	}
	if p.Connections, err = s.ListConnections(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPersons returns all persons, newest first, without their relations.
func (s *SQLiteStore) ListPersons(ctx context.Context) ([]model.Person, error) {
	return s.queryPersons(ctx, `SELECT `+personColumns+` FROM persons ORDER BY id DESC`)
}

// SearchPersons returns persons matching every non-empty filter field.
func (s *SQLiteStore) SearchPersons(ctx context.Context, f PersonFilter) ([]model.Person, error) {
	var where []string
	var args []any
	add := func(column, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		where = append(where, column+` LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(value))
	}
	add("names", f.Names)
	add("lastnames", f.Lastnames)
	add("identification", f.Identification)
	add("address", f.Address)

	query := `SELECT ` + personColumns + ` FROM persons`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY lastnames, names, id`
	return s.queryPersons(ctx, query, args...)
}

func (s *SQLiteStore) queryPersons(ctx context.Context, query string, args ...any) ([]model.Person, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying persons: %w", err)
	}
	defer rows.Close()

	persons := []model.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		persons = append(persons, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating persons: %w", err)
	}
	return persons, nil
}

// UpdatePerson replaces the editable fields of a person.
func (s *SQLiteStore) UpdatePerson(ctx context.Context, id int64, in model.PersonInput) (*model.Person, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE persons SET identification = ?, identification_type = ?, names = ?, lastnames = ?,
			address = ?, province = ?, country = ?, observations = ?, updated_at = ?
		WHERE id = ?
	`,
		strings.TrimSpace(in.Identification),
		strings.ToUpper(strings.TrimSpace(in.IdentificationType)),
		strings.TrimSpace(in.Names),
		strings.TrimSpace(in.Lastnames),
		in.Address,
		in.Province,
		in.Country,
		in.Observations,
		nowString(),
		id,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("identification %s: %w", in.Identification, ErrDuplicate)
		}
		return nil, fmt.Errorf("updating person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetPerson(ctx, id)
}

// DeletePerson removes a person and, by cascade, its files and links.
func (s *SQLiteStore) DeletePerson(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.logger.Debug("deleted person", "id", id)
	return nil
}
