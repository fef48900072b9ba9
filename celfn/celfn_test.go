package celfn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fetcher "github.com/fetcher-fn/fetcher-go"
	"github.com/fetcher-fn/fetcher-go/celfn"
)

func TestPathEvaluatesOverDependencies(t *testing.T) {
	p, err := celfn.Path("profile.accountId", "profile")
	require.NoError(t, err)

	g, err := fetcher.New(fetcher.Source{
		"profile": fetcher.Provide(func() (any, error) {
			return map[string]any{"accountId": "acct-7"}, nil
		}),
		"accountId": p,
	})
	require.NoError(t, err)

	val, err := g.NewScope().Resolve("accountId")
	require.NoError(t, err)
	assert.Equal(t, "acct-7", val)
}

func TestPathRejectsEmptyExpression(t *testing.T) {
	_, err := celfn.Path("")
	require.Error(t, err)
}

func TestPathRejectsUndeclaredVariable(t *testing.T) {
	// CEL checks variable references at compile time; only declared
	// dependencies are in the environment.
	_, err := celfn.Path("account.id", "profile")
	require.Error(t, err)
}

func TestMustPathPanics(t *testing.T) {
	assert.Panics(t, func() {
		celfn.MustPath("1 +")
	})
}
