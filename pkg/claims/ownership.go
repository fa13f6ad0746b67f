package claims

import (
	"strings"

	"github.com/pkg/errors"
)

// OwnershipPolicy decides whether a claim belongs to a user, based on the claim name.
type OwnershipPolicy string

const (
	// SubstringOwnership matches every claim whose name contains the owner. This is loose: the
	// owner "al" also matches claims of "alice". It is kept as the default because existing
	// claims were named and matched this way.
	SubstringOwnership OwnershipPolicy = "substring"

	// PrefixOwnership only matches claims named {owner}-{suffix}.
	PrefixOwnership OwnershipPolicy = "prefix"
)

// ParseOwnershipPolicy returns the policy named s. An empty string selects SubstringOwnership.
func ParseOwnershipPolicy(s string) (OwnershipPolicy, error) {
	switch p := OwnershipPolicy(strings.ToLower(s)); p {
	case "":
		return SubstringOwnership, nil
	case SubstringOwnership, PrefixOwnership:
		return p, nil
	default:
		return "", errors.Errorf("unknown ownership policy %q", s)
	}
}

// Owns returns true when claimName belongs to owner. An empty owner owns nothing.
func (p OwnershipPolicy) Owns(owner, claimName string) bool {
	if owner == "" {
		return false
	}
	if p == PrefixOwnership {
		return strings.HasPrefix(claimName, owner+"-")
	}
	return strings.Contains(claimName, owner)
}
