// ABOUTME: Record endpoints: CRUD, search and statistics
// ABOUTME: OTROS is replaced by the custom label before a record is sent

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/2389/antecedentes/internal/model"
)

// RecordService handles /records.
type RecordService struct {
	c *Client
}

// List returns every record.
func (s *RecordService) List(ctx context.Context) ([]model.Record, error) {
	return list[model.Record](ctx, s.c, "/records", nil)
}

// Get returns one record.
func (s *RecordService) Get(ctx context.Context, id int64) (*model.Record, error) {
	var r model.Record
	if err := s.c.do(ctx, &request{method: http.MethodGet, path: idPath("/records/%d", id)}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create validates and creates a record. When in.PersonID is set the
// response carries the relationship type to link that person with.
func (s *RecordService) Create(ctx context.Context, in model.RecordInput) (*model.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := jsonRequest(http.MethodPost, "/records", in.Wire())
	if err != nil {
		return nil, err
	}
	var r model.Record
	if err := s.c.do(ctx, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Update validates and replaces a record.
func (s *RecordService) Update(ctx context.Context, id int64, in model.RecordInput) (*model.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := jsonRequest(http.MethodPut, idPath("/records/%d", id), in.Wire())
	if err != nil {
		return nil, err
	}
	var r model.Record
	if err := s.c.do(ctx, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a record.
func (s *RecordService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, &request{method: http.MethodDelete, path: idPath("/records/%d", id)}, nil)
}

// Search filters records by title, content, type, person name and date range.
func (s *RecordService) Search(ctx context.Context, query url.Values) ([]model.Record, error) {
	return list[model.Record](ctx, s.c, "/records/search", query)
}

// Stats returns the record statistics.
func (s *RecordService) Stats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	if err := s.c.do(ctx, &request{method: http.MethodGet, path: "/records/stats/"}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
