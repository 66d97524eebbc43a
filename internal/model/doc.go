// Package model defines the entities the antecedentes tools exchange with the REST API.
//
// # Overview
//
// Every entity is decoded exactly once at the package boundary. The JSON
// decoders resolve the identifier fallbacks the API is known to produce
// (person_id or id, record_id or id, mime_type or mimetype) and turn absent
// list fields into empty slices, so callers never branch on nil lists or
// alternate field names.
//
// # Entities
//
//   - Person: an individual tracked by the system; owns files, record
//     relationships and connections to other persons
//   - Record: an "antecedente", a case or incident entry
//   - PersonRecordRelationship: the role a person plays in a record
//   - PersonConnection: a typed link between two persons
//   - File: a document or image attached to a person
//   - User, Role: operator accounts and their permission level
//
// # Vocabularies
//
// Relationship and connection types are fixed vocabularies. Connection types
// are split into personal and criminal categories:
//
//	model.ConnectionCategoryOf(model.ConnectionComplice) // CategoryCriminal
//
// # Validation
//
// Input types (PersonInput, RecordInput, UserInput) validate client-side and
// return ValidationErrors keyed by field name.
package model
