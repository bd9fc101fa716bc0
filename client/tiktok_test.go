package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *TikTokClient {
	return &TikTokClient{
		http:      &http.Client{Timeout: 5 * time.Second},
		userAgent: "test-agent",
	}
}

func TestFetchDocumentStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		permanent bool
	}{
		{"not found", http.StatusNotFound, true},
		{"gone", http.StatusGone, true},
		{"forbidden", http.StatusForbidden, true},
		{"rate limited", http.StatusTooManyRequests, false},
		{"server error", http.StatusInternalServerError, false},
		{"teapot", http.StatusTeapot, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := testClient()
			_, err := c.fetchDocument(context.Background(), "list_videos", "acct", srv.URL)
			require.Error(t, err)
			assert.Equal(t, tt.permanent, IsPermanent(err))
			assert.Equal(t, !tt.permanent, IsTransient(err))
		})
	}
}

func TestListVideosParsesAndOrdersNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(profileHTML))
	}))
	defer srv.Close()

	c := testClient()
	doc, err := c.fetchDocument(context.Background(), "list_videos", "wesko.music", srv.URL)
	require.NoError(t, err)

	videos, err := parseProfileDocument(doc, "wesko.music")
	require.NoError(t, err)
	require.Len(t, videos, 2)
}

func TestFetchVideoPageMissingMusicIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	}))
	defer srv.Close()

	c := testClient()
	_, err := c.FetchVideoPage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "not found", FailureReason(Permanent("list_videos", "x", "not found", nil)))
	assert.Equal(t, "timeout", FailureReason(context.DeadlineExceeded))
	assert.Equal(t, "cancelled", FailureReason(context.Canceled))
	assert.Equal(t, "boom", FailureReason(errors.New("boom")))
}

func TestIsTransientDeadline(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(errors.New("unclassified")))
	assert.False(t, IsPermanent(errors.New("unclassified")))
}
