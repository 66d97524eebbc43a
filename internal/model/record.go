// ABOUTME: Record ("antecedente") entity and dashboard statistics
// ABOUTME: Decoding accepts record_id or id

package model

import "encoding/json"

// Record is a case or incident entry.
type Record struct {
	ID           int64     `json:"record_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Observations string    `json:"observations"`
	TypeRecord   string    `json:"type_record"`
	Date         string    `json:"date"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`

	// TypeRelationship is only present on the response of a record created
	// on behalf of a person; it is the role to link that person with.
	TypeRelationship RelationshipType `json:"type_relationship,omitempty"`
}

// UnmarshalJSON accepts record_id or id.
func (r *Record) UnmarshalJSON(data []byte) error {
	type wire Record
	aux := struct {
		*wire
		AltID *int64 `json:"id"`
	}{wire: (*wire)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ID == 0 && aux.AltID != nil {
		r.ID = *aux.AltID
	}
	return nil
}

// Stats is the dashboard summary.
type Stats struct {
	TotalPersons  int            `json:"total_persons"`
	TotalRecords  int            `json:"total_records"`
	TotalFiles    int            `json:"total_files"`
	RecordsByType map[string]int `json:"records_by_type"`
	RecentRecords []Record       `json:"recent_records"`
}

// UnmarshalJSON normalizes absent collections.
func (s *Stats) UnmarshalJSON(data []byte) error {
	type wire Stats
	if err := json.Unmarshal(data, (*wire)(s)); err != nil {
		return err
	}
	if s.RecordsByType == nil {
		s.RecordsByType = map[string]int{}
	}
	if s.RecentRecords == nil {
		s.RecentRecords = []Record{}
	}
	return nil
}
