package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(url, "editor", "app-pass", WithRetry(3, 0))
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("not a url", "u", "p")
	assert.Error(t, err)

	_, err = NewClient("https://blog.example.com", "", "p")
	var pe *PublishError
	assert.True(t, errors.As(err, &pe))
}

func TestCreatePost_DerivesTitleAndExcerpt(t *testing.T) {
	var got Post
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "editor", user)
		assert.Equal(t, "app-pass", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42, "link": "https://blog.example.com/growing", "status": "publish"}`))
	}))
	defer server.Close()

	result, err := newTestClient(t, server.URL).CreatePost(context.Background(), Post{
		Content: "<h1>Growing Your Audience</h1>\n\n<p>Start small and stay consistent.</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, 42, result.ID)
	assert.Equal(t, "https://blog.example.com/growing", result.Link)
	assert.Equal(t, "Growing Your Audience", got.Title)
	assert.Equal(t, "Start small and stay consistent.", got.Excerpt)
	assert.Equal(t, StatusPublish, got.Status)
	assert.NotContains(t, got.Content, "<h1>")
}

func TestCreatePost_NoTitle(t *testing.T) {
	c := newTestClient(t, "https://blog.example.com")
	_, err := c.CreatePost(context.Background(), Post{Content: "<p>untitled</p>"})
	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Message, "no title")
}

func TestCreatePost_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"rest_cannot_create","message":"Sorry, you are not allowed to create posts."}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).CreatePost(context.Background(), Post{Title: "T", Content: "<p>x</p>"})
	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Contains(t, pe.Error(), "not allowed to create posts")
	assert.False(t, pe.Retryable())
}

func TestUploadMedia_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "/wp-json/wp/v2/media", r.URL.Path)
		assert.Equal(t, `attachment; filename="cover.png"`, r.Header.Get("Content-Disposition"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(body))

		switch n {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 7, "source_url": "https://blog.example.com/cover.png"}`))
		}
	}))
	defer server.Close()

	media, err := newTestClient(t, server.URL).UploadMedia(context.Background(), "cover.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 7, media.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestUploadMedia_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).UploadMedia(context.Background(), "a.jpg", []byte("x"))
	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
	assert.Equal(t, int32(DefaultMaxAttempts), calls.Load())
}

func TestUploadMedia_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).UploadMedia(context.Background(), "a.jpg", []byte("x"))
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadMedia_BackoffDoubles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.baseBackoff = 100
	var waits []int64
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, int64(d))
		return nil
	}

	_, err := c.UploadMedia(context.Background(), "a.jpg", []byte("x"))
	assert.Error(t, err)
	assert.Equal(t, []int64{100, 200}, waits)
}

func TestPublishError_RetryableNetwork(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.CreatePost(context.Background(), Post{Title: "T", Content: "<p>x</p>"})
	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Retryable())

	cancelled := &PublishError{Cause: context.Canceled}
	assert.False(t, cancelled.Retryable())
}
