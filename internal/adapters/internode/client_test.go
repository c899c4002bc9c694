package internode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bnema/internode-usage-cli/internal/adapters/internode/internodetest"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, server *internodetest.Server, detectErrorBody bool) *Client {
	t.Helper()

	client, err := NewClient(
		domain.Credentials{Username: internodetest.Username, Password: internodetest.Password},
		Options{BaseURL: server.BaseURL(), DetectErrorBody: detectErrorBody},
	)
	require.NoError(t, err)
	return client
}

func TestClientGetSendsAuthUserAgentAndQuery(t *testing.T) {
	server := internodetest.NewServer(t)
	client := newTestClient(t, server, true)

	root, err := client.Get(context.Background(), "/1234567/history", url.Values{"verbose": {"1"}, "count": {"8"}})
	require.NoError(t, err)
	assert.Equal(t, "internode", root.Tag)
	require.NotNil(t, root.FindElement("api/usagelist"))

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/1234567/history", requests[0].Path)
	assert.Equal(t, "1", requests[0].Query.Get("verbose"))
	assert.Equal(t, "8", requests[0].Query.Get("count"))
	assert.True(t, requests[0].BasicAuth)
	assert.Equal(t, internodetest.Username, requests[0].Username)
	assert.Equal(t, internodetest.Password, requests[0].Password)
	assert.True(t, strings.HasPrefix(requests[0].UserAgent, "internode-usage-cli/"))
	assert.Contains(t, requests[0].UserAgent, "api/1.5")
}

func TestClientGetRootPath(t *testing.T) {
	server := internodetest.NewServer(t)
	client := newTestClient(t, server, true)

	root, err := client.Get(context.Background(), "", nil)
	require.NoError(t, err)
	require.NotNil(t, root.FindElement("api/services"))
	assert.Equal(t, []string{"/"}, server.Paths())
}

func TestClientGetUnauthorized(t *testing.T) {
	server := internodetest.NewServer(t)
	client, err := NewClient(domain.Credentials{Username: "alice", Password: "wrong"}, Options{BaseURL: server.BaseURL()})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "", nil)
	require.ErrorIs(t, err, domain.ErrAuthentication)
	assert.NotContains(t, err.Error(), "wrong")
}

func TestClientGetErrorBodyWithOKStatus(t *testing.T) {
	server := internodetest.NewServer(t)
	server.Set("/1234567/usage", http.StatusOK, internodetest.ErrorXML("Service is not available"))
	client := newTestClient(t, server, true)

	_, err := client.Get(context.Background(), "/1234567/usage", nil)
	require.ErrorIs(t, err, domain.ErrAPI)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Service is not available", apiErr.Message)
}

func TestClientGetErrorBodyAsRootElement(t *testing.T) {
	server := internodetest.NewServer(t)
	server.Set("/1234567/usage", http.StatusOK, `<error><msg>Rate limited</msg></error>`)
	client := newTestClient(t, server, true)

	_, err := client.Get(context.Background(), "/1234567/usage", nil)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Rate limited", apiErr.Message)
}

func TestClientGetErrorBodyDetectionDisabled(t *testing.T) {
	server := internodetest.NewServer(t)
	server.Set("/1234567/usage", http.StatusOK, internodetest.ErrorXML("Service is not available"))
	client := newTestClient(t, server, false)

	root, err := client.Get(context.Background(), "/1234567/usage", nil)
	require.NoError(t, err)
	assert.Nil(t, root.FindElement("api/traffic"))
}

func TestClientGetParsesBodyOnServerError(t *testing.T) {
	server := internodetest.NewServer(t)
	server.Set("/1234567/usage", http.StatusInternalServerError, internodetest.UsageXML)
	client := newTestClient(t, server, true)

	root, err := client.Get(context.Background(), "/1234567/usage", nil)
	require.NoError(t, err)
	assert.NotNil(t, root.FindElement("api/traffic"))
}

func TestClientGetRejectsNonXMLBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "html", body: "<html><body>Bad Gateway</p></html>"},
		{name: "empty", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := internodetest.NewServer(t)
			server.Set("/1234567/usage", http.StatusBadGateway, tt.body)
			client := newTestClient(t, server, true)

			_, err := client.Get(context.Background(), "/1234567/usage", nil)
			require.ErrorIs(t, err, domain.ErrSchema)
		})
	}
}

func TestClientGetRejectsOversizedBody(t *testing.T) {
	server := internodetest.NewServer(t)
	padding := strings.Repeat("x", maxResponseBytes)
	server.Set("/1234567/history", http.StatusOK, "<internode><!--"+padding+"--></internode>")
	client := newTestClient(t, server, true)

	_, err := client.Get(context.Background(), "/1234567/history", nil)
	require.ErrorIs(t, err, ErrResponseTooLarge)
	assert.False(t, errors.Is(err, domain.ErrSchema))
}

func TestClientGetAcceptsBodyAtSizeLimit(t *testing.T) {
	server := internodetest.NewServer(t)
	body := internodetest.UsageXML + "<!--"
	body += strings.Repeat("x", maxResponseBytes-len(body)-len("-->")) + "-->"
	require.Len(t, body, maxResponseBytes)
	server.Set("/1234567/usage", http.StatusOK, body)
	client := newTestClient(t, server, true)

	root, err := client.Get(context.Background(), "/1234567/usage", nil)
	require.NoError(t, err)
	assert.NotNil(t, root.FindElement("api/traffic"))
}

func TestClientGetHonoursTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	client, err := NewClient(domain.Credentials{Username: "u", Password: "p"}, Options{BaseURL: slow.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "perform request")
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(domain.Credentials{}, Options{BaseURL: "  "})
	assert.ErrorContains(t, err, "base url is empty")
}

func TestClientEndpointJoinsPaths(t *testing.T) {
	client, err := NewClient(domain.Credentials{}, Options{BaseURL: "https://example.test/api/v1.5/"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/api/v1.5/", client.endpoint(""))
	assert.Equal(t, "https://example.test/api/v1.5/42/service", client.endpoint("/42/service"))
	assert.Equal(t, "https://example.test/api/v1.5/42/usage", client.endpoint("42/usage"))
}
