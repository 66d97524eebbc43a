// ABOUTME: Store interface and errors for the development backend
// ABOUTME: Entities are the shared model types; filters select search criteria

package store

import (
	"context"
	"errors"

	"github.com/2389/antecedentes/internal/model"
)

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated
	ErrDuplicate = errors.New("already exists")
	// ErrSelfLink is returned when connecting a person to itself
	ErrSelfLink = errors.New("a person cannot be linked to itself")
	// ErrInvalidCredentials is returned on a failed password check
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// PersonFilter selects persons by substring match on each non-empty field.
type PersonFilter struct {
	Names          string
	Lastnames      string
	Identification string
	Address        string
}

// RecordFilter selects records. Dates are YYYY-MM-DD and inclusive.
type RecordFilter struct {
	Title      string
	Content    string
	TypeRecord string
	PersonName string
	DateFrom   string
	DateTo     string
}

// StoredFile is a file row including its name under the files directory.
type StoredFile struct {
	model.File
	StoredName string
}

// Store is the persistence used by the API handlers.
type Store interface {
	CreatePerson(ctx context.Context, in model.PersonInput) (*model.Person, error)
	GetPerson(ctx context.Context, id int64) (*model.Person, error)
	ListPersons(ctx context.Context) ([]model.Person, error)
	SearchPersons(ctx context.Context, f PersonFilter) ([]model.Person, error)
	UpdatePerson(ctx context.Context, id int64, in model.PersonInput) (*model.Person, error)
	DeletePerson(ctx context.Context, id int64) error

	CreateRecord(ctx context.Context, in model.RecordInput) (*model.Record, error)
	GetRecord(ctx context.Context, id int64) (*model.Record, error)
	ListRecords(ctx context.Context) ([]model.Record, error)
	SearchRecords(ctx context.Context, f RecordFilter) ([]model.Record, error)
	UpdateRecord(ctx context.Context, id int64, in model.RecordInput) (*model.Record, error)
	DeleteRecord(ctx context.Context, id int64) error
	RecordStats(ctx context.Context) (*model.Stats, error)

	LinkRecord(ctx context.Context, personID, recordID int64, rel model.RelationshipType) (*model.PersonRecordRelationship, error)
	UnlinkRecord(ctx context.Context, personID, recordID int64) error
	ListPersonRecords(ctx context.Context, personID int64) ([]model.PersonRecordRelationship, error)
	ConnectPersons(ctx context.Context, personID, otherID int64, t model.ConnectionType) (*model.PersonConnection, error)
	DisconnectPersons(ctx context.Context, personID, otherID int64) error
	ListConnections(ctx context.Context, personID int64) ([]model.PersonConnection, error)

	CreateFile(ctx context.Context, f *StoredFile) error
	GetFile(ctx context.Context, id int64) (*StoredFile, error)
	ListPersonFiles(ctx context.Context, personID int64) ([]StoredFile, error)
	DeleteFile(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, in model.UserInput) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id int64, in model.UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
	ListRoles(ctx context.Context) ([]model.Role, error)

	Ping(ctx context.Context) error
	Close() error
}
