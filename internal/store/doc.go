// Package store provides persistent storage for the development API server
// using SQLite.
//
// # Architecture
//
// Store is the interface the HTTP handlers depend on. SQLiteStore
// implements it on modernc.org/sqlite (pure Go, no cgo) with WAL mode and
// foreign keys enabled.
//
// # Data Models
//
// Entities are the shared model types:
//
//   - model.Person with its files, record relationships and connections
//   - model.Record, optionally filtered by linked person name
//   - model.File, with StoredFile adding the on-disk name
//   - model.User and model.Role; password hashes never leave the store
//
// # Schema
//
//	roles               seeded ADMIN, MODERATE, USER, VIEW (ids 1..4)
//	users               unique username, bcrypt password hash
//	persons             unique identification
//	records
//	person_records      unique (person_id, record_id)
//	person_connections  unique unordered pair of persons
//	files
//
// Deleting a person or record cascades to its links and files rows.
//
// # Errors
//
//   - ErrNotFound: the entity does not exist
//   - ErrDuplicate: a unique constraint would be violated
//   - ErrSelfLink: a person cannot be connected to itself
//   - ErrInvalidCredentials: unknown username or wrong password
//
// # Timestamps
//
// All timestamps are stored as RFC3339 strings in UTC.
package store
