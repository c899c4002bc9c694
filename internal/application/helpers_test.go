package application

import (
	"testing"

	"github.com/bnema/internode-usage-cli/internal/adapters/internode"
	"github.com/bnema/internode-usage-cli/internal/adapters/internode/internodetest"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, server *internodetest.Server) *internode.Client {
	t.Helper()

	client, err := internode.NewClient(
		domain.Credentials{Username: internodetest.Username, Password: internodetest.Password},
		internode.Options{BaseURL: server.BaseURL(), DetectErrorBody: true},
	)
	require.NoError(t, err)
	return client
}

func newTestAccount(t *testing.T, server *internodetest.Server) *Account {
	t.Helper()
	return NewAccount(newTestClient(t, server), DefaultAccountOptions())
}

func mockAnyContext() interface{} {
	return mock.Anything
}
