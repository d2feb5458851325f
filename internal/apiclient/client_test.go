package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
)

func TestClient_DoJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/things", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "v", in["k"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))
	defer server.Close()

	c := New("test", server.URL+"/api/", server.Client())

	var out struct {
		ID string `json:"id"`
	}
	err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/things",
		Op:     "create",
		Body:   map[string]string{"k": "v"},
		Header: BearerHeader("tok"),
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "42", out.ID)
}

func TestClient_ErrorMessageOrder(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		status int
	}{
		{name: "detail wins", body: `{"detail":"d","error":"e","message":"m"}`, status: 400, want: "d"},
		{name: "error before message", body: `{"error":"e","message":"m"}`, status: 400, want: "e"},
		{name: "message", body: `{"message":"m"}`, status: 401, want: "m"},
		{name: "non-string detail skipped", body: `{"detail":[{"loc":"x"}],"message":"m"}`, status: 422, want: "m"},
		{name: "status fallback", body: `not json`, status: 503, want: "Error: 503"},
		{name: "empty body", body: ``, status: 404, want: "Error: 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := New("svc", server.URL+"/", server.Client())
			err := c.Do(context.Background(), Request{Op: "get"}, nil)

			var se *common.ServiceError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.want, se.Message)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Equal(t, "svc", se.Service)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL + "/"
	server.Close()

	c := New("svc", url, nil)
	err := c.Do(context.Background(), Request{Op: "get"}, nil)

	var se *common.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.StatusCode)
	assert.True(t, common.IsRetryable(err))
}

func TestClient_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))
	defer server.Close()

	c := New("svc", server.URL+"/", server.Client())
	var out map[string]any
	err := c.Do(context.Background(), Request{Op: "get"}, &out)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid response body"))
}
