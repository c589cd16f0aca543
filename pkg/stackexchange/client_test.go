package stackexchange

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
		assert.Equal(t, "/users", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "stackoverflow", q.Get("site"))
		assert.Equal(t, "jane", q.Get("inname"))
		assert.Equal(t, "reputation", q.Get("sort"))
		assert.Equal(t, "test-key", q.Get("key"))

		w.Write([]byte(`{
			"items": [{"user_id": 12345, "display_name": "Jane Doe", "reputation": 48210}],
			"has_more": false, "total": 1, "quota_remaining": 250
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", "stackoverflow", WithBaseURL(srv.URL))
	resp, err := c.SearchUsers(context.Background(), "jane", 1, 15)

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(12345), resp.Items[0].UserID)
	assert.Equal(t, 48210, resp.Items[0].Reputation)
	assert.False(t, resp.HasMore)
}

func TestSearchUsersExhaustedQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [], "quota_remaining": 0}`))
	}))
	defer srv.Close()

	c := NewClient("", "stackoverflow", WithBaseURL(srv.URL))
	_, err := c.SearchUsers(context.Background(), "jane", 1, 15)

	require.Error(t, err)
	assert.True(t, resilience.IsQuota(err))
}

func TestSearchUsersLastPageWithZeroQuotaIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The final allowed request can still carry items.
		w.Write([]byte(`{"items": [{"user_id": 1, "display_name": "Last One"}], "quota_remaining": 0}`))
	}))
	defer srv.Close()

	c := NewClient("", "stackoverflow", WithBaseURL(srv.URL))
	resp, err := c.SearchUsers(context.Background(), "last", 1, 15)

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
}

func TestTopTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/12345/top-answer-tags", r.URL.Path)
		w.Write([]byte(`{"items": [{"tag_name": "go", "answer_count": 80, "answer_score": 1200}]}`))
	}))
	defer srv.Close()

	c := NewClient("", "stackoverflow", WithBaseURL(srv.URL))
	resp, err := c.TopTags(context.Background(), 12345, 10)

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "go", resp.Items[0].TagName)
	assert.Equal(t, 80, resp.Items[0].AnswerCount)
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantQuota bool
		wantTrans bool
	}{
		{name: "429 is quota", status: http.StatusTooManyRequests, wantQuota: true},
		{name: "502 is transient", status: http.StatusBadGateway, wantTrans: true},
		{name: "400 is fatal", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient("", "stackoverflow", WithBaseURL(srv.URL))
			_, err := c.SearchUsers(context.Background(), "jane", 1, 15)

			require.Error(t, err)
			assert.Equal(t, tt.wantQuota, resilience.IsQuota(err))
			assert.Equal(t, tt.wantTrans, resilience.IsTransient(err))
		})
	}
}
