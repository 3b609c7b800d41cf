package query

import (
	"regexp"
	"strings"
)

// Kind is the value type a filterable field carries.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindID
	KindTime
	// KindList is a JSON array of strings; string filters match any element.
	KindList
	// KindObject is a JSON object whose dotted sub-fields ("options.port_scan")
	// are filterable. Sub-field values are booleans when they read as such,
	// strings otherwise.
	KindObject
)

// IDField is the reserved record identifier.
const IDField = "_id"

// Schema lists the fields a resource may be filtered and sorted on.
type Schema struct {
	Fields map[string]Kind
}

var subFieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Lookup resolves a field name, including dotted sub-fields of object
// fields. The reserved identifier is always known.
func (s Schema) Lookup(field string) (Kind, bool) {
	if field == IDField {
		return KindID, true
	}
	if k, ok := s.Fields[field]; ok {
		return k, true
	}
	parent, sub, found := strings.Cut(field, ".")
	if !found {
		return 0, false
	}
	if k, ok := s.Fields[parent]; ok && k == KindObject && subFieldPattern.MatchString(sub) {
		return KindObject, true
	}
	return 0, false
}

// SplitSubField splits "options.port_scan" into ("options", "port_scan").
func SplitSubField(field string) (string, string, bool) {
	return strings.Cut(field, ".")
}
