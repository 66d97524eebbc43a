// ABOUTME: Record persistence: CRUD, filtered search and dashboard statistics
// ABOUTME: Records created for a person echo the relationship type to link with

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/2389/antecedentes/internal/model"
)

const recordColumns = `r.id, r.title, r.content, r.observations, r.type_record, r.date, r.created_at, r.updated_at`

// recentRecordsLimit is how many records RecordStats lists as recent.
const recentRecordsLimit = 5

func scanRecord(row rowScanner) (*model.Record, error) {
	var r model.Record
	var createdAt, updatedAt string
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Content,
		&r.Observations,
		&r.TypeRecord,
		&r.Date,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecord inserts a record. When in.PersonID is set the returned record
// carries the relationship type the caller should link that person with;
// the link itself is a separate call.
func (s *SQLiteStore) CreateRecord(ctx context.Context, in model.RecordInput) (*model.Record, error) {
	now := nowString()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records (title, content, observations, type_record, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		strings.TrimSpace(in.Title),
		in.Content,
		in.Observations,
		strings.TrimSpace(in.TypeRecord),
		in.Date,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading record id: %w", err)
	}

	r, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.PersonID != 0 {
		r.TypeRelationship = in.TypeRelationship
		if r.TypeRelationship == "" {
			r.TypeRelationship = model.RelationshipInvolved
		}
	}

	s.logger.Debug("created record", "id", id, "type", r.TypeRecord)
	return r, nil
}

// GetRecord retrieves a record by ID.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStore) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records r WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}
	return r, nil
}

// ListRecords returns all records, newest first.
func (s *SQLiteStore) ListRecords(ctx context.Context) ([]model.Record, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` FROM records r ORDER BY r.created_at DESC, r.id DESC`)
}

// SearchRecords returns records matching every filter field that is set.
func (s *SQLiteStore) SearchRecords(ctx context.Context, f RecordFilter) ([]model.Record, error) {
	var where []string
	var args []any

	if v := strings.TrimSpace(f.Title); v != "" {
		where = append(where, `r.title LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(v))
	}
	if v := strings.TrimSpace(f.Content); v != "" {
		where = append(where, `r.content LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(v))
	}
	if v := strings.TrimSpace(f.TypeRecord); v != "" {
		where = append(where, `r.type_record = ? COLLATE NOCASE`)
		args = append(args, v)
	}
	if v := strings.TrimSpace(f.PersonName); v != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM person_records pr JOIN persons p ON p.id = pr.person_id
			WHERE pr.record_id = r.id AND (p.names || ' ' || p.lastnames) LIKE ? ESCAPE '\'
		)`)
		args = append(args, likePattern(v))
	}
	if v := strings.TrimSpace(f.DateFrom); v != "" {
		where = append(where, `r.date <> '' AND r.date >= ?`)
		args = append(args, v)
	}
	if v := strings.TrimSpace(f.DateTo); v != "" {
		where = append(where, `r.date <> '' AND r.date <= ?`)
		args = append(args, v)
	}

	query := `SELECT ` + recordColumns + ` FROM records r`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY r.date DESC, r.id DESC`
	return s.queryRecords(ctx, query, args...)
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// UpdateRecord replaces a record's fields.
func (s *SQLiteStore) UpdateRecord(ctx context.Context, id int64, in model.RecordInput) (*model.Record, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE records SET title = ?, content = ?, observations = ?, type_record = ?, date = ?, updated_at = ?
		WHERE id = ?
	`,
		strings.TrimSpace(in.Title),
		in.Content,
		in.Observations,
		strings.TrimSpace(in.TypeRecord),
		in.Date,
		nowString(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetRecord(ctx, id)
}

// DeleteRecord removes a record and its person links.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordStats returns totals, records per type and the most recent records.
func (s *SQLiteStore) RecordStats(ctx context.Context) (*model.Stats, error) {
	st := &model.Stats{
		RecordsByType: map[string]int{},
		RecentRecords: []model.Record{},
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM persons),
			(SELECT COUNT(*) FROM records),
			(SELECT COUNT(*) FROM files)
	`).Scan(&st.TotalPersons, &st.TotalRecords, &st.TotalFiles)
	if err != nil {
		return nil, fmt.Errorf("counting totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT type_record, COUNT(*) FROM records GROUP BY type_record`)
	if err != nil {
		return nil, fmt.Errorf("counting records by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scanning type count: %w", err)
		}
		st.RecordsByType[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating type counts: %w", err)
	}

	recent, err := s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM records r ORDER BY r.created_at DESC, r.id DESC LIMIT ?`,
		recentRecordsLimit)
	if err != nil {
		return nil, err
	}
	st.RecentRecords = recent
	return st, nil
}
