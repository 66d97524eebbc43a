// ABOUTME: Client-side validation for person, record and user inputs
// ABOUTME: Errors are collected per field so they can be shown inline

package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ValidationErrors maps a field name to a human-readable message.
type ValidationErrors map[string]string

// Error lists every field error in a stable order.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// orNil returns nil when there are no field errors.
func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

var (
	digitsOnly   = regexp.MustCompile(`^[0-9]+$`)
	alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// ValidateIdentification checks an identification number against its document type.
func ValidateIdentification(typ, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToUpper(strings.TrimSpace(typ)) {
	case IdentificationCedula:
		if len(value) != 10 || !digitsOnly.MatchString(value) {
			return fmt.Errorf("cedula must have exactly 10 digits")
		}
	case IdentificationRUC:
		if len(value) != 13 || !digitsOnly.MatchString(value) {
			return fmt.Errorf("RUC must have exactly 13 digits")
		}
	case IdentificationPasaporte:
		if len(value) < 6 || len(value) > 20 || !alphanumeric.MatchString(value) {
			return fmt.Errorf("passport must have 6 to 20 letters or digits")
		}
	case "":
		return fmt.Errorf("identification type is required")
	default:
		return fmt.Errorf("unknown identification type %q", typ)
	}
	return nil
}

// PersonInput is the payload for creating or updating a person.
type PersonInput struct {
	Identification     string `json:"identification"`
	IdentificationType string `json:"identification_type"`
	Names              string `json:"names"`
	Lastnames          string `json:"lastnames"`
	Address            string `json:"address"`
	Province           string `json:"province"`
	Country            string `json:"country"`
	Observations       string `json:"observations"`
}

// PersonInputFrom copies the editable fields of p.
func PersonInputFrom(p *Person) PersonInput {
	return PersonInput{
		Identification:     p.Identification,
		IdentificationType: p.IdentificationType,
		Names:              p.Names,
		Lastnames:          p.Lastnames,
		Address:            p.Address,
		Province:           p.Province,
		Country:            p.Country,
		Observations:       p.Observations,
	}
}

// Validate checks required fields and the identification format.
func (in *PersonInput) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(in.Identification) == "" {
		errs["identification"] = "identification is required"
	} else if err := ValidateIdentification(in.IdentificationType, in.Identification); err != nil {
		errs["identification"] = err.Error()
	}
	if strings.TrimSpace(in.IdentificationType) == "" {
		errs["identification_type"] = "identification type is required"
	}
	if strings.TrimSpace(in.Names) == "" {
		errs["names"] = "names are required"
	}
	if strings.TrimSpace(in.Lastnames) == "" {
		errs["lastnames"] = "lastnames are required"
	}
	return errs.orNil()
}

// RecordInput is the payload for creating or updating a record.
type RecordInput struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Observations string `json:"observations"`
	TypeRecord   string `json:"type_record"`
	Date         string `json:"date"`

	// CustomType is the label that replaces OTROS; it is never sent on its own.
	CustomType string `json:"-"`

	// PersonID and TypeRelationship are set when the record is created for a
	// person; the API echoes TypeRelationship back for the follow-up link.
	PersonID         int64            `json:"person_id,omitempty"`
	TypeRelationship RelationshipType `json:"type_relationship,omitempty"`
}

// Validate checks required fields, the OTROS escape and the date format.
func (in *RecordInput) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(in.TypeRecord) == "" {
		errs["type_record"] = "record type is required"
	} else if t, _ := ParseRecordType(in.TypeRecord); t == RecordTypeOther && strings.TrimSpace(in.CustomType) == "" {
		errs["type_record"] = "a custom label is required for OTROS"
	}
	if in.Date != "" {
		if _, err := time.Parse("2006-01-02", in.Date); err != nil {
			errs["date"] = "date must be YYYY-MM-DD"
		}
	}
	if in.TypeRelationship != "" {
		if _, ok := ParseRelationshipType(string(in.TypeRelationship)); !ok {
			errs["type_relationship"] = fmt.Sprintf("unknown relationship type %q", in.TypeRelationship)
		}
	}
	return errs.orNil()
}

// Wire returns the payload as sent to the API: OTROS is replaced by the custom label.
func (in RecordInput) Wire() RecordInput {
	if t, ok := ParseRecordType(in.TypeRecord); ok {
		in.TypeRecord = string(t)
		if t == RecordTypeOther {
			in.TypeRecord = strings.TrimSpace(in.CustomType)
		}
	}
	return in
}

// UserInput is the payload for creating or updating an operator account.
type UserInput struct {
	Names           string `json:"names"`
	Lastname        string `json:"lastname"`
	Username        string `json:"username"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"-"`
	RoleID          int64  `json:"role_id"`
}

// Validate checks required fields. Passwords are required on create and
// optional on update, but must match and be at least 8 characters when given.
func (in *UserInput) Validate(creating bool) error {
	errs := ValidationErrors{}
	if strings.TrimSpace(in.Names) == "" {
		errs["names"] = "names are required"
	}
	if strings.TrimSpace(in.Lastname) == "" {
		errs["lastname"] = "lastname is required"
	}
	if strings.TrimSpace(in.Username) == "" {
		errs["username"] = "username is required"
	}
	if in.RoleID < RoleIDAdmin || in.RoleID > RoleIDView {
		errs["role_id"] = "role is required"
	}
	switch {
	case in.Password == "" && creating:
		errs["password"] = "password is required"
	case in.Password != "" && len(in.Password) < 8:
		errs["password"] = "password must have at least 8 characters"
	case in.Password != in.ConfirmPassword:
		errs["confirm_password"] = "passwords do not match"
	}
	return errs.orNil()
}
