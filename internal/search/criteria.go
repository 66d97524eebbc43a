// ABOUTME: Search criteria for persons and records
// ABOUTME: Whitespace-only fields count as empty; Values carries only filled fields

package search

import (
	"errors"
	"net/url"
	"strings"
)

// ErrEmptyCriteria is returned when every search field is empty.
var ErrEmptyCriteria = errors.New("at least one search field is required")

// Criteria is a set of optional filters.
type Criteria interface {
	// Empty reports whether no field carries a value.
	Empty() bool
	// Values returns the non-empty fields as query parameters.
	Values() url.Values
}

// PersonCriteria filters /persons/search/person/.
type PersonCriteria struct {
	Names          string
	Lastnames      string
	Identification string
	Address        string
}

func (c PersonCriteria) Values() url.Values {
	v := url.Values{}
	add(v, "names", c.Names)
	add(v, "lastnames", c.Lastnames)
	add(v, "identification", c.Identification)
	add(v, "address", c.Address)
	return v
}

func (c PersonCriteria) Empty() bool { return len(c.Values()) == 0 }

// RecordCriteria filters /records/search. Dates are YYYY-MM-DD.
type RecordCriteria struct {
	Title      string
	Content    string
	TypeRecord string
	PersonName string
	DateFrom   string
	DateTo     string
}

func (c RecordCriteria) Values() url.Values {
	v := url.Values{}
	add(v, "title", c.Title)
	add(v, "content", c.Content)
	add(v, "type_record", c.TypeRecord)
	add(v, "person_name", c.PersonName)
	add(v, "date_from", c.DateFrom)
	add(v, "date_to", c.DateTo)
	return v
}

func (c RecordCriteria) Empty() bool { return len(c.Values()) == 0 }

func add(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}
