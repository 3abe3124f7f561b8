package datamanager

import (
	"encoding/binary"
	"fmt"
)

// Rule names a POS id the conversion core needs by meaning.
type Rule int

const (
	// RuleParticle is the particle id allowed to start a segment.
	RuleParticle Rule = iota
	// RuleFunctional is the generic functional-word id.
	RuleFunctional
	// RuleUnknown is the id assigned to unknown words.
	RuleUnknown
	// RuleNumber is the id of numerals.
	RuleNumber
	// RuleFirstName is the id of given names.
	RuleFirstName
	// RuleLastName is the id of family names.
	RuleLastName

	// NumRules is the number of rules a pos_matcher section must hold.
	NumRules
)

// POSMatcher maps rules to POS ids. It is a view into the pos_matcher
// section: one little-endian uint16 per rule, in Rule order. Newer data may
// append rules this version does not know.
type POSMatcher struct {
	data []byte
}

// NewPOSMatcher validates data.
func NewPOSMatcher(data []byte) (*POSMatcher, error) {
	if len(data)%2 != 0 || len(data)/2 < int(NumRules) {
		return nil, fmt.Errorf("pos matcher has %d bytes, need %d uint16 ids", len(data), NumRules)
	}
	return &POSMatcher{data: data}, nil
}

// ID returns the POS id of r.
func (m *POSMatcher) ID(r Rule) uint16 {
	return binary.LittleEndian.Uint16(m.data[2*int(r):])
}

// Is reports whether id is the POS id of r.
func (m *POSMatcher) Is(r Rule, id uint16) bool {
	return m.ID(r) == id
}

// EncodePOSMatcher serializes ids, indexed by Rule.
func EncodePOSMatcher(ids [NumRules]uint16) []byte {
	b := make([]byte, 0, 2*len(ids))
	for _, id := range ids {
		b = binary.LittleEndian.AppendUint16(b, id)
	}
	return b
}
