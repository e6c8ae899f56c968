package catalog

import (
	"fmt"
	"strings"
)

// Policy decides who is granted access to newly ingested items.
type Policy string

const (
	// PolicyAll grants every user.
	PolicyAll Policy = "all"
	// PolicyAdmin grants only superusers.
	PolicyAdmin Policy = "admin"
	// PolicySelf grants only the user who started the ingestion.
	PolicySelf Policy = "self"
	// PolicyNone leaves every accessibility row denied.
	PolicyNone Policy = "none"
)

// ParsePolicy converts a raw policy name into a Policy.
func ParsePolicy(raw string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, raw)
	}
	return p, nil
}

// Valid reports whether p is one of the known policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyAll, PolicyAdmin, PolicySelf, PolicyNone:
		return true
	}
	return false
}
