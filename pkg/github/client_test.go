package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/sourcing-cli/internal/resilience"
)

func TestSearchUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/users", r.URL.Path)
		assert.Equal(t, "language:go type:user", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_count": 2, "items": [
			{"login": "jdoe", "type": "User"},
			{"login": "acme", "type": "Organization"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	resp, err := c.SearchUsers(context.Background(), "language:go type:user", 1, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCount)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "jdoe", resp.Items[0].Login)
}

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/jdoe", r.URL.Path)
		w.Write([]byte(`{"login": "jdoe", "type": "User", "name": "Jane Doe",
			"location": "Berlin", "followers": 40, "public_repos": 12}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	user, err := c.GetUser(context.Background(), "jdoe")

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, 40, user.Followers)
	assert.Equal(t, 12, user.PublicRepos)
}

func TestListRepos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/jdoe/repos", r.URL.Path)
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		w.Write([]byte(`[{"name": "svc", "language": "Go", "stargazers_count": 120, "fork": false}]`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	repos, err := c.ListRepos(context.Background(), "jdoe", 30)

	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "Go", repos[0].Language)
	assert.Equal(t, 120, repos[0].StargazersCount)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		headers   map[string]string
		wantQuota bool
		wantTrans bool
	}{
		{name: "429 is quota", status: http.StatusTooManyRequests, wantQuota: true},
		{
			name:      "403 with zero remaining is quota",
			status:    http.StatusForbidden,
			headers:   map[string]string{"X-RateLimit-Remaining": "0"},
			wantQuota: true,
		},
		{name: "503 is transient", status: http.StatusServiceUnavailable, wantTrans: true},
		{name: "404 is fatal", status: http.StatusNotFound},
		{name: "plain 403 is fatal", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient("", WithBaseURL(srv.URL))
			_, err := c.GetUser(context.Background(), "jdoe")

			require.Error(t, err)
			assert.Equal(t, tt.wantQuota, resilience.IsQuota(err))
			if tt.wantTrans {
				assert.True(t, resilience.IsTransient(err))
			}
		})
	}
}
