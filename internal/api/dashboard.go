// ABOUTME: Dashboard summary built from the stats endpoint
// ABOUTME: Falls back to counting list results when stats are unavailable

package api

import (
	"context"
	"sort"

	"github.com/2389/antecedentes/internal/model"
)

// recentRecordsLimit caps the recent records list in a computed summary.
const recentRecordsLimit = 5

// DashboardService assembles the landing page summary.
type DashboardService struct {
	c *Client
}

// Stats returns the dashboard summary. When the backend does not expose
// /records/stats/ (404), totals are computed from the person and record lists.
func (s *DashboardService) Stats(ctx context.Context) (*model.Stats, error) {
	st, err := s.c.Records.Stats(ctx)
	if err == nil {
		return st, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	persons, err := s.c.Persons.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.c.Records.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(persons, records), nil
}

func summarize(persons []model.Person, records []model.Record) *model.Stats {
	st := &model.Stats{
		TotalPersons:  len(persons),
		TotalRecords:  len(records),
		RecordsByType: map[string]int{},
		RecentRecords: []model.Record{},
	}
	for _, p := range persons {
		st.TotalFiles += len(p.Files)
	}
	for _, r := range records {
		st.RecordsByType[r.TypeRecord]++
	}

	recent := make([]model.Record, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt.Time)
	})
	if len(recent) > recentRecordsLimit {
		recent = recent[:recentRecordsLimit]
	}
	st.RecentRecords = append(st.RecentRecords, recent...)
	return st
}
