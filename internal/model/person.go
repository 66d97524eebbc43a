// ABOUTME: Person entity and its join entities (record relationships, person connections)
// ABOUTME: Decoding resolves id fallbacks and normalizes absent lists to empty slices

package model

import (
	"encoding/json"
	"strings"
)

// Identification document types.
const (
	IdentificationCedula    = "CEDULA"
	IdentificationRUC       = "RUC"
	IdentificationPasaporte = "PASAPORTE"
)

// Person is an individual tracked by the system.
type Person struct {
	ID                  int64                      `json:"person_id"`
	Identification      string                     `json:"identification"`
	IdentificationType  string                     `json:"identification_type"`
	Names               string                     `json:"names"`
	Lastnames           string                     `json:"lastnames"`
	Address             string                     `json:"address"`
	Province            string                     `json:"province"`
	Country             string                     `json:"country"`
	Observations        string                     `json:"observations"`
	CreatedAt           Timestamp                  `json:"created_at"`
	UpdatedAt           Timestamp                  `json:"updated_at"`
	Files               []File                     `json:"files"`
	RecordRelationships []PersonRecordRelationship `json:"record_relationships"`
	Connections         []PersonConnection         `json:"connections"`
}

// FullName joins names and lastnames.
func (p *Person) FullName() string {
	return strings.TrimSpace(p.Names + " " + p.Lastnames)
}

// LinkedRecordIDs returns the ids of the records already linked to the person.
func (p *Person) LinkedRecordIDs() []int64 {
	ids := make([]int64, 0, len(p.RecordRelationships))
	for _, r := range p.RecordRelationships {
		ids = append(ids, r.RecordID)
	}
	return ids
}

// ConnectedPersonIDs returns the ids of the persons already connected to the person.
func (p *Person) ConnectedPersonIDs() []int64 {
	ids := make([]int64, 0, len(p.Connections))
	for _, c := range p.Connections {
		ids = append(ids, c.ConnectedPersonID)
	}
	return ids
}

// Images returns the files classified as images.
func (p *Person) Images() []File {
	return p.filesOfKind(FileKindImage)
}

// Documents returns the files that are not images.
func (p *Person) Documents() []File {
	return p.filesOfKind(FileKindDocument)
}

func (p *Person) filesOfKind(kind FileKind) []File {
	out := []File{}
	for _, f := range p.Files {
		if f.Kind() == kind {
			out = append(out, f)
		}
	}
	return out
}

// UnmarshalJSON accepts person_id or id and normalizes nil lists.
func (p *Person) UnmarshalJSON(data []byte) error {
	type wire Person
	aux := struct {
		*wire
		AltID *int64 `json:"id"`
	}{wire: (*wire)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == 0 && aux.AltID != nil {
		p.ID = *aux.AltID
	}
	p.normalize()
	return nil
}

func (p *Person) normalize() {
	if p.Files == nil {
		p.Files = []File{}
	}
	if p.RecordRelationships == nil {
		p.RecordRelationships = []PersonRecordRelationship{}
	}
	if p.Connections == nil {
		p.Connections = []PersonConnection{}
	}
	for i := range p.RecordRelationships {
		if p.RecordRelationships[i].PersonID == 0 {
			p.RecordRelationships[i].PersonID = p.ID
		}
	}
	for i := range p.Connections {
		if p.Connections[i].PersonID == 0 {
			p.Connections[i].PersonID = p.ID
		}
	}
}

// PersonRecordRelationship joins a person to a record with a role.
type PersonRecordRelationship struct {
	ID               int64            `json:"id"`
	PersonID         int64            `json:"person_id"`
	RecordID         int64            `json:"record_id"`
	TypeRelationship RelationshipType `json:"type_relationship"`
	Record           *Record          `json:"record,omitempty"`
	CreatedAt        Timestamp        `json:"created_at"`
}

// UnmarshalJSON fills RecordID from the nested record when the flat field is absent.
func (r *PersonRecordRelationship) UnmarshalJSON(data []byte) error {
	type wire PersonRecordRelationship
	if err := json.Unmarshal(data, (*wire)(r)); err != nil {
		return err
	}
	if r.RecordID == 0 && r.Record != nil {
		r.RecordID = r.Record.ID
	}
	return nil
}

// PersonConnection links two persons with a connection type.
type PersonConnection struct {
	ID                int64          `json:"id"`
	PersonID          int64          `json:"person_id"`
	ConnectedPersonID int64          `json:"connected_person_id"`
	ConnectionType    ConnectionType `json:"connection_type"`
	Person            *Person        `json:"person,omitempty"`
	CreatedAt         Timestamp      `json:"created_at"`
}

// Category returns the vocabulary category of the connection type.
func (c *PersonConnection) Category() ConnectionCategory {
	return ConnectionCategoryOf(c.ConnectionType)
}

// UnmarshalJSON accepts relationship as an alias of connection_type and fills
// ConnectedPersonID from the nested person.
func (c *PersonConnection) UnmarshalJSON(data []byte) error {
	type wire PersonConnection
	aux := struct {
		*wire
		Relationship ConnectionType `json:"relationship"`
	}{wire: (*wire)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if c.ConnectionType == "" {
		c.ConnectionType = aux.Relationship
	}
	if c.ConnectedPersonID == 0 && c.Person != nil {
		c.ConnectedPersonID = c.Person.ID
	}
	return nil
}
