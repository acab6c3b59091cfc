package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reflexion/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/", APIKey: "proxy-key"})
	require.NoError(t, err)
	// idle keep-alive connections would trip the leak check
	t.Cleanup(client.http.CloseIdleConnections)
	return client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantURL string
		wantErr bool
	}{
		{name: "default url", url: "", wantURL: DefaultURL},
		{name: "trailing slash trimmed", url: "https://backend.example.com/", wantURL: "https://backend.example.com"},
		{name: "bad scheme", url: "ftp://backend.example.com", wantErr: true},
		{name: "unparseable", url: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(Config{BaseURL: tt.url})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, client.BaseURL())
			assert.Equal(t, DefaultTimeout, client.http.Timeout)
		})
	}
}

func TestCredentialsHeaders(t *testing.T) {
	var got http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[]`)
	})

	creds := Credentials{AuthToken: "tok", OrgContext: "org-1", RequestID: "req-1"}
	_, err := client.Projects(context.Background(), creds)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", got.Get(HeaderAuthorization))
	assert.Equal(t, "org-1", got.Get(HeaderOrgContext))
	assert.Equal(t, "req-1", got.Get(HeaderRequestID))
	assert.Equal(t, "proxy-key", got.Get(HeaderAPIKey))
}

func TestInfoWithoutAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info", r.URL.Path)
		assert.Empty(t, r.Header.Get(HeaderAuthorization))
		assert.Empty(t, r.Header.Get(HeaderOrgContext))
		io.WriteString(w, `{"version":"1.2.0"}`)
	})

	raw, err := client.Info(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.0"}`, string(raw))
	assert.True(t, client.IsAvailable(context.Background()))
}

func TestBackendErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantJSON string
	}{
		{name: "json error passes through", status: http.StatusForbidden, body: `{"detail":"nope"}`, wantJSON: `{"detail":"nope"}`},
		{name: "text error wrapped", status: http.StatusBadGateway, body: "upstream down", wantJSON: `{"error":"upstream down"}`},
		{name: "empty error body", status: http.StatusInternalServerError, body: "", wantJSON: `{"error":"Backend error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.Projects(context.Background(), Credentials{AuthToken: "tok"})
			apiErr, ok := AsAPIError(err)
			require.True(t, ok, "expected *APIError, got %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.JSONEq(t, tt.wantJSON, string(apiErr.JSONBody()))
		})
	}
}

func TestInvalidSuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>ok</html>")
	})

	_, err := client.Projects(context.Background(), Credentials{AuthToken: "tok"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestApply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/project/apply", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.ApplyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dec-1", req.DecisionID)
		assert.Equal(t, "concept_brief", req.ProposalType)
		assert.Equal(t, true, req.Payload["approved"])
		assert.EqualValues(t, 1, req.Payload["selected_option_index"])

		io.WriteString(w, `{"success":true,"active_agent":"hydration"}`)
	})

	raw, err := client.Apply(context.Background(), Credentials{AuthToken: "tok"}, models.ApplyRequest{
		ProposalType: "concept_brief",
		DecisionID:   "dec-1",
		Payload:      map[string]any{"approved": true, "selected_option_index": 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"active_agent":"hydration"}`, string(raw))
}

func TestForward(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/threads/abc/runs", r.URL.Path)
		assert.Equal(t, "limit=5", r.URL.RawQuery)
		assert.Equal(t, "yes", r.Header.Get("X-Custom"))
		assert.Equal(t, "proxy-key", r.Header.Get(HeaderAPIKey))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"input":1}`, string(body))

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"run_id":"r1"}`)
	})

	header := http.Header{}
	header.Set("X-Custom", "yes")
	header.Set("Host", "frontend.example.com")

	resp, err := client.Forward(context.Background(), http.MethodPost, "/threads/abc/runs", "limit=5", header, strings.NewReader(`{"input":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestForwardKeepsClientAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer client", r.Header.Get(HeaderAuthorization))
		assert.Empty(t, r.Header.Get(HeaderAPIKey))
		w.WriteHeader(http.StatusNoContent)
	})

	header := http.Header{}
	header.Set(HeaderAuthorization, "Bearer client")

	resp, err := client.Forward(context.Background(), http.MethodGet, "/assistants", "", header, nil)
	require.NoError(t, err)
	resp.Body.Close()
}
