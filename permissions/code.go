package permissions

import (
	"strings"

	"letterdesk/apperr"
)

// Code is a permission token of the form "<action>:<resource>[:own]",
// e.g. "edit:tasks:own". Codes are data, not a closed enum; only the
// role-default bundles are fixed.
type Code string

// OwnSuffix marks a permission as limited to resources the requester
// created or is assigned.
const OwnSuffix = ":own"

func (c Code) Action() string {
	parts := strings.SplitN(string(c), ":", 2)
	return parts[0]
}

func (c Code) Resource() string {
	parts := strings.Split(string(c), ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Own reports whether the code carries the ownership scope suffix.
func (c Code) Own() bool {
	return strings.HasSuffix(string(c), OwnSuffix)
}

// Base strips the ownership suffix, if present.
func (c Code) Base() Code {
	return Code(strings.TrimSuffix(string(c), OwnSuffix))
}

// ParseCode validates the shape of a permission code string.
func ParseCode(s string) (Code, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", apperr.Newf(apperr.Validation, "malformed permission code %q", s)
	}
	for _, p := range parts[:2] {
		if p == "" {
			return "", apperr.Newf(apperr.Validation, "malformed permission code %q", s)
		}
	}
	if len(parts) == 3 && parts[2] != "own" && parts[2] != "all" && parts[2] != "assigned" {
		return "", apperr.Newf(apperr.Validation, "unknown scope in permission code %q", s)
	}
	return Code(s), nil
}
