package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	cases := map[string]AuthProvider{
		"google": ProviderGoogle,
		"github": ProviderGitHub,
		"apple":  ProviderApple,
	}
	for input, want := range cases {
		got, ok := ParseProvider(input)
		require.True(t, ok, input)
		require.Equal(t, want, got)
	}
}

func TestParseProviderRejectsEmailAndUnknown(t *testing.T) {
	// EMAIL is not a federated provider and never appears in OAuth
	// URLs.
	for _, input := range []string{"email", "EMAIL", "facebook", "", "Google"} {
		_, ok := ParseProvider(input)
		require.False(t, ok, input)
	}
}
