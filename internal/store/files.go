// ABOUTME: File metadata persistence; content lives on disk under the stored name
// ABOUTME: Rows cascade away with their person

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const fileColumns = `id, person_id, original_filename, stored_name, mime_type, file_size, description, created_at`

func scanFile(row rowScanner) (*StoredFile, error) {
	var f StoredFile
	var createdAt string
	err := row.Scan(
		&f.ID,
		&f.PersonID,
		&f.OriginalFilename,
		&f.StoredName,
		&f.MimeType,
		&f.FileSize,
		&f.Description,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	if f.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFile inserts file metadata and fills in its ID and CreatedAt.
// Returns ErrNotFound when the person doesn't exist.
func (s *SQLiteStore) CreateFile(ctx context.Context, f *StoredFile) error {
	ok, err := s.exists(ctx, "persons", f.PersonID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("persons %d: %w", f.PersonID, ErrNotFound)
	}

	now := nowString()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO files (person_id, original_filename, stored_name, mime_type, file_size, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, f.PersonID, f.OriginalFilename, f.StoredName, f.MimeType, f.FileSize, strings.TrimSpace(f.Description), now)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("stored name %s: %w", f.StoredName, ErrDuplicate)
		}
		return fmt.Errorf("inserting file: %w", err)
	}

	if f.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading file id: %w", err)
	}
	if f.CreatedAt, err = parseTimestamp(now); err != nil {
		return err
	}

	s.logger.Debug("created file", "id", f.ID, "person_id", f.PersonID, "size", f.FileSize)
	return nil
}

// GetFile retrieves file metadata by ID.
// Returns ErrNotFound if the file doesn't exist.
func (s *SQLiteStore) GetFile(ctx context.Context, id int64) (*StoredFile, error) {
	f, err := scanFile(s.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying file: %w", err)
	}
	return f, nil
}

// ListPersonFiles returns a person's files in upload order.
func (s *SQLiteStore) ListPersonFiles(ctx context.Context, personID int64) ([]StoredFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE person_id = ? ORDER BY id`, personID)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	out := []StoredFile{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}
	return out, nil
}

// DeleteFile removes file metadata.
func (s *SQLiteStore) DeleteFile(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
