// ABOUTME: Fixed vocabularies for record types, person-record roles and person connections
// ABOUTME: Connection types are split into personal and criminal categories

package model

import "strings"

// RecordType categorizes a record.
type RecordType string

const (
	RecordTypeTheft            RecordType = "ROBO"
	RecordTypeHomicide         RecordType = "HOMICIDIO"
	RecordTypeFraud            RecordType = "ESTAFA"
	RecordTypeAssault          RecordType = "AGRESION"
	RecordTypeDomesticViolence RecordType = "VIOLENCIA_INTRAFAMILIAR"
	RecordTypeTrafficking      RecordType = "TRAFICO"
	RecordTypeMissing          RecordType = "DESAPARICION"
	// RecordTypeOther requires a custom label, which replaces it on the wire.
	RecordTypeOther RecordType = "OTROS"
)

// RecordTypes lists the selectable record types in display order.
var RecordTypes = []RecordType{
	RecordTypeTheft,
	RecordTypeHomicide,
	RecordTypeFraud,
	RecordTypeAssault,
	RecordTypeDomesticViolence,
	RecordTypeTrafficking,
	RecordTypeMissing,
	RecordTypeOther,
}

// RelationshipType is the role a person plays with respect to a record.
type RelationshipType string

const (
	RelationshipAccused     RelationshipType = "DENUNCIADO"
	RelationshipComplainant RelationshipType = "DENUNCIANTE"
	RelationshipWitness     RelationshipType = "TESTIGO"
	RelationshipVictim      RelationshipType = "VICTIMA"
	RelationshipSuspect     RelationshipType = "SOSPECHOSO"
	RelationshipInvolved    RelationshipType = "INVOLUCRADO"
	RelationshipOther       RelationshipType = "OTRO"
)

// RelationshipTypes lists the person-record roles in display order.
var RelationshipTypes = []RelationshipType{
	RelationshipAccused,
	RelationshipComplainant,
	RelationshipWitness,
	RelationshipVictim,
	RelationshipSuspect,
	RelationshipInvolved,
	RelationshipOther,
}

// ConnectionType labels a link between two persons.
type ConnectionType string

const (
	ConnectionFamily    ConnectionType = "FAMILIAR"
	ConnectionFriend    ConnectionType = "AMIGO"
	ConnectionColleague ConnectionType = "COLEGA"
	ConnectionPartner   ConnectionType = "SOCIO"
	ConnectionNeighbor  ConnectionType = "VECINO"
	ConnectionCouple    ConnectionType = "PAREJA"

	ConnectionCriminalGroup ConnectionType = "GRUPO_CRIMINAL"
	ConnectionGangLeader    ConnectionType = "JEFE_BANDA"
	ConnectionComplice      ConnectionType = "COMPLICE"
	ConnectionVictim        ConnectionType = "VICTIMA"
	ConnectionWitness       ConnectionType = "TESTIGO"
	ConnectionContact       ConnectionType = "CONTACTO"

	ConnectionOther ConnectionType = "OTRO"
)

// ConnectionCategory groups connection types for display.
type ConnectionCategory string

const (
	CategoryPersonal ConnectionCategory = "personal"
	CategoryCriminal ConnectionCategory = "criminal"
	CategoryOther    ConnectionCategory = "other"
)

// PersonalConnections are relationships of ordinary life.
var PersonalConnections = []ConnectionType{
	ConnectionFamily,
	ConnectionFriend,
	ConnectionColleague,
	ConnectionPartner,
	ConnectionNeighbor,
	ConnectionCouple,
}

// CriminalConnections are relationships relevant to an investigation.
var CriminalConnections = []ConnectionType{
	ConnectionCriminalGroup,
	ConnectionGangLeader,
	ConnectionComplice,
	ConnectionVictim,
	ConnectionWitness,
	ConnectionContact,
}

// ConnectionTypes lists every connection type, personal first, then criminal, then OTRO.
func ConnectionTypes() []ConnectionType {
	all := make([]ConnectionType, 0, len(PersonalConnections)+len(CriminalConnections)+1)
	all = append(all, PersonalConnections...)
	all = append(all, CriminalConnections...)
	return append(all, ConnectionOther)
}

// ConnectionCategoryOf returns the category of t. Unknown values are CategoryOther.
func ConnectionCategoryOf(t ConnectionType) ConnectionCategory {
	for _, c := range PersonalConnections {
		if c == t {
			return CategoryPersonal
		}
	}
	for _, c := range CriminalConnections {
		if c == t {
			return CategoryCriminal
		}
	}
	return CategoryOther
}

// ParseRecordType normalizes s and reports whether it is in the vocabulary.
func ParseRecordType(s string) (RecordType, bool) {
	t := RecordType(normalizeToken(s))
	for _, v := range RecordTypes {
		if v == t {
			return t, true
		}
	}
	return t, false
}

// ParseRelationshipType normalizes s and reports whether it is in the vocabulary.
func ParseRelationshipType(s string) (RelationshipType, bool) {
	t := RelationshipType(normalizeToken(s))
	for _, v := range RelationshipTypes {
		if v == t {
			return t, true
		}
	}
	return t, false
}

// ParseConnectionType normalizes s and reports whether it is in the vocabulary.
func ParseConnectionType(s string) (ConnectionType, bool) {
	t := ConnectionType(normalizeToken(s))
	for _, v := range ConnectionTypes() {
		if v == t {
			return t, true
		}
	}
	return t, false
}

// normalizeToken uppercases s, folds the accented vowels the UI labels use and
// turns spaces into underscores, so "Víctima" and "grupo criminal" match.
func normalizeToken(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", " ", "_").Replace(s)
	return s
}
