package sibling

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certdocs/internal/apperror"
	"certdocs/internal/model"
)

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/documents/credential/by-subject/42":
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set(SubjectIDHeader, "42")
			_, _ = w.Write([]byte("%PDF credential"))
		case "/documents/psychometric_file/by-subject/42":
			http.NotFound(w, r)
		case "/documents/credential/by-subject/43":
			w.Header().Set(SubjectIDHeader, "99")
			_, _ = w.Write([]byte("%PDF"))
		default:
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 5*time.Second)
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		doc, err := c.Fetch(ctx, "tok-1", model.KindCredential, 42)
		require.NoError(t, err)
		defer doc.Body.Close()

		body, err := io.ReadAll(doc.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF credential"), body)
		assert.Equal(t, "application/pdf", doc.ContentType)
		assert.Equal(t, int64(42), doc.SubjectID)
		assert.Equal(t, model.KindCredential, doc.Kind)
	})

	t.Run("404 is not found", func(t *testing.T) {
		_, err := c.Fetch(ctx, "tok-1", model.KindPsychometricFile, 42)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("5xx is remote service error", func(t *testing.T) {
		_, err := c.Fetch(ctx, "tok-1", model.KindCredential, 7)
		assert.ErrorIs(t, err, apperror.ErrRemoteService)
		assert.Contains(t, err.Error(), "status 503: database unavailable")
	})

	t.Run("subject mismatch", func(t *testing.T) {
		_, err := c.Fetch(ctx, "tok-1", model.KindCredential, 43)
		assert.ErrorIs(t, err, apperror.ErrRemoteService)
	})
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base, time.Second).Fetch(context.Background(), "t", model.KindCredential, 1)
	assert.ErrorIs(t, err, apperror.ErrRemoteService)
}

func TestClient_HeaderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 100*time.Millisecond).Fetch(context.Background(), "t", model.KindCredential, 1)
	assert.ErrorIs(t, err, apperror.ErrRemoteService)
}
