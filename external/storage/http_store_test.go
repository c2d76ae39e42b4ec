package storage

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	storagepkg "github.com/mindhaven/sessioncore/internal/storage"
)

func TestGetObject_ReturnsBytes(t *testing.T) {
	body := []byte("opus-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recordings/room-42.ogg" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	got, err := store.GetObject(context.Background(), storagepkg.RecordingKey("room-42"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestGetObject_NotFoundSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	_, err := store.GetObject(context.Background(), "recordings/missing.ogg")
	if !errors.Is(err, storagepkg.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestGetObject_ServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	_, err := store.GetObject(context.Background(), "recordings/x.ogg")
	if err == nil || errors.Is(err, storagepkg.ErrObjectNotFound) {
		t.Fatalf("expected non-not-found error, got %v", err)
	}
}
