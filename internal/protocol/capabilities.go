package protocol

import (
	"slices"
	"strings"
)

// Well-known capability names.
const (
	CapAgent        = "agent"
	CapObjectFormat = "object-format"
	CapSymref       = "symref"
	CapFetch        = "fetch"
)

// CapabilitySet holds the capabilities a server advertised. A capability
// may appear more than once (symref does), so every value is kept in
// encounter order. Capabilities without a value map to an empty string.
type CapabilitySet map[string][]string

// ParseCapabilities parses a space-separated capability list such as
// "multi_ack symref=HEAD:refs/heads/main agent=git/2.43.0".
func ParseCapabilities(s string) CapabilitySet {
	caps := make(CapabilitySet)
	caps.Merge(s)
	return caps
}

// Merge adds every capability in the space-separated list s.
func (c CapabilitySet) Merge(s string) {
	for field := range strings.FieldsSeq(s) {
		name, value, _ := strings.Cut(field, "=")
		c[name] = append(c[name], value)
	}
}

// Has reports whether name was advertised.
func (c CapabilitySet) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Get returns the first value advertised for name.
func (c CapabilitySet) Get(name string) (string, bool) {
	values, ok := c[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Symref returns the target of a "symref=<name>:<target>" capability.
func (c CapabilitySet) Symref(name string) (string, bool) {
	for _, value := range c[CapSymref] {
		source, target, ok := strings.Cut(value, ":")
		if ok && source == name {
			return target, true
		}
	}
	return "", false
}

// String renders the set in sorted order.
func (c CapabilitySet) String() string {
	var fields []string
	for name, values := range c {
		for _, value := range values {
			if value == "" {
				fields = append(fields, name)
			} else {
				fields = append(fields, name+"="+value)
			}
		}
	}
	slices.Sort(fields)
	return strings.Join(fields, " ")
}
