package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lighthouse/backend/internal/domain"
)

func TestClassifyTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  domain.TargetKind
	}{
		{"example.com", domain.TargetKindDomain},
		{"www.example.co.uk", domain.TargetKindDomain},
		{"a-b.example.com", domain.TargetKindDomain},
		{"10.0.0.1", domain.TargetKindIP},
		{"10.0.0.0/24", domain.TargetKindIP},
		{"10.0.0.1-10.0.0.20", domain.TargetKindIP},
		{"2001:db8::1", domain.TargetKindIP},
		{"2001:db8::/64", domain.TargetKindIP},
		{"not_a_target!!", domain.TargetKindInvalid},
		{"com", domain.TargetKindInvalid},
		{"-bad.example.com", domain.TargetKindInvalid},
		{"bad..example.com", domain.TargetKindInvalid},
		{"10.0.0.20-10.0.0.1", domain.TargetKindInvalid},
		{"10.0.0.1-2001:db8::1", domain.TargetKindInvalid},
		{"10.0.0.0/33", domain.TargetKindInvalid},
		{"300.1.1.1", domain.TargetKindInvalid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			got := ClassifyTarget(tt.token)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.token, got.Value)
		})
	}
}

func TestClassifyTargets_PreservesOrder(t *testing.T) {
	t.Parallel()

	units := ClassifyTargets("a.com, 10.0.0.1\t10.0.0.2\n\nb.org,,")
	require.Len(t, units, 4)
	assert.Equal(t, []domain.TargetUnit{
		{Kind: domain.TargetKindDomain, Value: "a.com"},
		{Kind: domain.TargetKindIP, Value: "10.0.0.1"},
		{Kind: domain.TargetKindIP, Value: "10.0.0.2"},
		{Kind: domain.TargetKindDomain, Value: "b.org"},
	}, units)

	assert.Empty(t, ClassifyTargets(" , \n"))
}

func TestIsValidDomain_Length(t *testing.T) {
	t.Parallel()

	label := "abcdefghij"
	long := ""
	for len(long) < 250 {
		long += label + "."
	}
	long += "com"
	assert.False(t, IsValidDomain(long))
	assert.False(t, IsValidDomain(""))
	assert.False(t, IsValidDomain("Example.com"), "callers lowercase first")
}

func TestFirstLevelDomainAndScopes(t *testing.T) {
	t.Parallel()

	fld, err := FirstLevelDomain("a.b.example.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "example.co.uk", fld)

	fld, err = FirstLevelDomain("WWW.Example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", fld)

	patterns := []string{"example.com", " Dev.Other.org "}
	assert.True(t, IsInScopes("example.com", patterns))
	assert.True(t, IsInScopes("a.b.example.com", patterns))
	assert.True(t, IsInScopes("x.dev.other.org", patterns))
	assert.False(t, IsInScopes("other.org", patterns))
	assert.False(t, IsInScopes("notexample.com", patterns))
	assert.False(t, IsInScopes("", patterns))
	assert.False(t, IsInScopes("example.com", nil))
}
