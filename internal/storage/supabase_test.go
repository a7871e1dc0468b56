package storage

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"server/internal/domain"
)

func TestSupabaseStoreSave(t *testing.T) {
	var gotPath, gotAuth, gotUpsert, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotUpsert = r.Header.Get("x-upsert")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := newSupabaseStore(Options{SupabaseURL: server.URL, SupabaseServiceKey: "service-key"})
	if err != nil {
		t.Fatalf("newSupabaseStore: %v", err)
	}

	artifact, err := store.SaveOriginal(t.Context(), []byte("bytes"), "jpg")
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/storage/v1/object/uploads/upload-") {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotUpsert != "false" {
		t.Fatalf("x-upsert = %q, want false", gotUpsert)
	}
	if gotContentType != "image/jpeg" {
		t.Fatalf("content type = %q, want image/jpeg", gotContentType)
	}
	if !strings.HasPrefix(artifact.URL, server.URL+"/storage/v1/object/public/uploads/") {
		t.Fatalf("url = %q, want public object url", artifact.URL)
	}
	if artifact.Backend != string(BackendSupabase) {
		t.Fatalf("backend = %q, want %q", artifact.Backend, BackendSupabase)
	}
}

func TestSupabaseStoreSaveFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"The resource already exists"}`))
	}))
	defer server.Close()

	store, _ := newSupabaseStore(Options{SupabaseURL: server.URL, SupabaseServiceKey: "k"})

	_, err := store.SaveGenerated(t.Context(), []byte("bytes"), "png")
	if err == nil {
		t.Fatal("expected error for conflict response")
	}
	var writeErr *domain.StorageWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("error type = %T, want *domain.StorageWriteError", err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("error %q missing upstream message", err)
	}
}

func TestSupabaseStoreOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/storage/v1/object/uploads/upload-1.jpg" {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg bytes"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Object not found"}`))
	}))
	defer server.Close()

	store, _ := newSupabaseStore(Options{SupabaseURL: server.URL, SupabaseServiceKey: "k"})

	reader, contentType, err := store.Open(t.Context(), "uploads/upload-1.jpg")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	data, _ := io.ReadAll(reader)
	if string(data) != "jpeg bytes" || contentType != "image/jpeg" {
		t.Fatalf("got %q (%s)", data, contentType)
	}

	_, _, err = store.Open(t.Context(), "uploads/missing.jpg")
	var readErr *domain.StorageReadError
	if !errors.As(err, &readErr) || !readErr.NotFound() {
		t.Fatalf("missing object error = %v, want not-found StorageReadError", err)
	}
}

func TestSupabaseStorePrivateACL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, _ := newSupabaseStore(Options{
		SupabaseURL:        server.URL,
		SupabaseServiceKey: "k",
		PrivateACL:         true,
	})

	artifact, err := store.SaveOriginal(t.Context(), []byte("x"), "jpg")
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if !strings.HasPrefix(artifact.URL, "/api/blob?pathname=uploads/") {
		t.Fatalf("url = %q, want blob proxy form", artifact.URL)
	}
}
