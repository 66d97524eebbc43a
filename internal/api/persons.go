// ABOUTME: Person endpoints: CRUD, search, linked entities and link/unlink calls
// ABOUTME: Inputs are validated client-side before they are sent

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/2389/antecedentes/internal/model"
)

// Linked is the body of GET /persons/{id}/linked.
type Linked struct {
	PersonID    int64                            `json:"person_id"`
	Records     []model.PersonRecordRelationship `json:"records"`
	Connections []model.PersonConnection         `json:"connections"`
}

// PersonService handles /persons.
type PersonService struct {
	c *Client
}

// List returns every person.
func (s *PersonService) List(ctx context.Context) ([]model.Person, error) {
	return list[model.Person](ctx, s.c, "/persons", nil)
}

// Get returns one person with files, record relationships and connections.
func (s *PersonService) Get(ctx context.Context, id int64) (*model.Person, error) {
	var p model.Person
	if err := s.c.do(ctx, &request{method: http.MethodGet, path: idPath("/persons/%d", id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create validates and creates a person. A duplicate identification comes
// back as an *Error for which IsDuplicate holds.
func (s *PersonService) Create(ctx context.Context, in model.PersonInput) (*model.Person, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := jsonRequest(http.MethodPost, "/persons", in)
	if err != nil {
		return nil, err
	}
	var p model.Person
	if err := s.c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update validates and patches a person.
func (s *PersonService) Update(ctx context.Context, id int64, in model.PersonInput) (*model.Person, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := jsonRequest(http.MethodPatch, idPath("/persons/%d", id), in)
	if err != nil {
		return nil, err
	}
	var p model.Person
	if err := s.c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a person.
func (s *PersonService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, &request{method: http.MethodDelete, path: idPath("/persons/%d", id)}, nil)
}

// Search filters persons by names, lastnames, identification and address.
func (s *PersonService) Search(ctx context.Context, query url.Values) ([]model.Person, error) {
	return list[model.Person](ctx, s.c, "/persons/search/person/", query)
}

// FindByIdentification returns the person with exactly this identification,
// or nil when there is none.
func (s *PersonService) FindByIdentification(ctx context.Context, identification string) (*model.Person, error) {
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return nil, nil
	}
	people, err := s.Search(ctx, url.Values{"identification": {identification}})
	if err != nil {
		return nil, err
	}
	for i := range people {
		if strings.EqualFold(strings.TrimSpace(people[i].Identification), identification) {
			return &people[i], nil
		}
	}
	return nil, nil
}

// Linked returns the records and persons linked to a person.
func (s *PersonService) Linked(ctx context.Context, id int64) (*Linked, error) {
	var out Linked
	if err := s.c.do(ctx, &request{method: http.MethodGet, path: idPath("/persons/%d/linked", id)}, &out); err != nil {
		return nil, err
	}
	if out.Records == nil {
		out.Records = []model.PersonRecordRelationship{}
	}
	if out.Connections == nil {
		out.Connections = []model.PersonConnection{}
	}
	return &out, nil
}

// LinkPerson connects two persons with a connection type.
func (s *PersonService) LinkPerson(ctx context.Context, id, otherID int64, connectionType model.ConnectionType) (*model.PersonConnection, error) {
	var out model.PersonConnection
	err := s.c.do(ctx, &request{
		method: http.MethodPost,
		path:   idPath("/persons/linked-person/%d/%d", id, otherID),
		query:  url.Values{"connection_type": {string(connectionType)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UnlinkPerson removes the connection between two persons.
func (s *PersonService) UnlinkPerson(ctx context.Context, id, otherID int64) error {
	return s.c.do(ctx, &request{method: http.MethodDelete, path: idPath("/persons/%d/connection/%d", id, otherID)}, nil)
}

// LinkRecord links a record to a person with a relationship type.
func (s *PersonService) LinkRecord(ctx context.Context, personID, recordID int64, relationship model.RelationshipType) (*model.PersonRecordRelationship, error) {
	var out model.PersonRecordRelationship
	err := s.c.do(ctx, &request{
		method: http.MethodPost,
		path:   idPath("/persons/%d/record/%d", personID, recordID),
		query:  url.Values{"type_relationship": {string(relationship)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UnlinkRecord removes a person-record relationship.
func (s *PersonService) UnlinkRecord(ctx context.Context, personID, recordID int64) error {
	return s.c.do(ctx, &request{method: http.MethodDelete, path: idPath("/persons/%d/record/%d", personID, recordID)}, nil)
}
