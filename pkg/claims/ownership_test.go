package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwns(t *testing.T) {
	tests := []struct {
		owner     string
		claim     string
		substring bool
		prefix    bool
	}{
		{owner: "alice", claim: "alice-x1b2c", substring: true, prefix: true},
		{owner: "alice", claim: "alice2-x1b2c", substring: true},
		{owner: "al", claim: "alice-x1b2c", substring: true},
		{owner: "bob", claim: "alice-x1b2c"},
		{owner: "", claim: "alice-x1b2c"},
		{owner: "alice", claim: ""},
	}
	for _, test := range tests {
		t.Run(test.owner+"/"+test.claim, func(t *testing.T) {
			assert.Equal(t, test.substring, SubstringOwnership.Owns(test.owner, test.claim), "substring")
			assert.Equal(t, test.prefix, PrefixOwnership.Owns(test.owner, test.claim), "prefix")
		})
	}
}

func TestParseOwnershipPolicy(t *testing.T) {
	tests := []struct {
		value     string
		expected  OwnershipPolicy
		expectErr bool
	}{
		{value: "", expected: SubstringOwnership},
		{value: "substring", expected: SubstringOwnership},
		{value: "Prefix", expected: PrefixOwnership},
		{value: "exact", expectErr: true},
	}
	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			policy, err := ParseOwnershipPolicy(test.value)
			if test.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expected, policy)
		})
	}
}
