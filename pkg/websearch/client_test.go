package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/sourcing-cli/internal/resilience"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go developer portfolio", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Write([]byte(`{"code": 200, "data": [
			{"title": "Jane Doe - Engineer", "url": "https://janedoe.dev", "description": "Go engineer."}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithSearchBaseURL(srv.URL))
	resp, err := c.Search(context.Background(), "go developer portfolio")

	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "https://janedoe.dev", resp.Data[0].URL)
}

func TestSearchWithSiteFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "site:linkedin.com/in go engineer", r.URL.Query().Get("q"))
		w.Write([]byte(`{"code": 200, "data": []}`))
	}))
	defer srv.Close()

	c := NewClient("", WithSearchBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "go engineer", WithSiteFilter("linkedin.com/in"))

	require.NoError(t, err)
}

func TestRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/https://janedoe.dev/about", r.URL.Path)
		w.Write([]byte(`{"code": 200, "data": {"title": "About", "content": "Hi, I am Jane."}}`))
	}))
	defer srv.Close()

	c := NewClient("", WithReaderBaseURL(srv.URL))
	resp, err := c.Read(context.Background(), "https://janedoe.dev/about")

	require.NoError(t, err)
	assert.Equal(t, "About", resp.Data.Title)
	assert.Equal(t, "Hi, I am Jane.", resp.Data.Content)
}

func TestSearchStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantQuota bool
		wantTrans bool
	}{
		{name: "429 is quota", status: http.StatusTooManyRequests, wantQuota: true},
		{name: "504 is transient", status: http.StatusGatewayTimeout, wantTrans: true},
		{name: "401 is fatal", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient("", WithSearchBaseURL(srv.URL))
			_, err := c.Search(context.Background(), "anything")

			require.Error(t, err)
			assert.Equal(t, tt.wantQuota, resilience.IsQuota(err))
			assert.Equal(t, tt.wantTrans, resilience.IsTransient(err))
		})
	}
}
