package locator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[{"lat":"52.5200","lon":"13.4050","display_name":"Berlin, Germany"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	fix, raw, err := c.Search(context.Background(), "old lighthouse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "old lighthouse" {
		t.Errorf("query not forwarded, got %q", gotQuery)
	}
	if fix.DisplayName != "Berlin, Germany" {
		t.Errorf("unexpected display name %q", fix.DisplayName)
	}
	if fix.Lat != 52.52 || fix.Lon != 13.405 {
		t.Errorf("unexpected coordinates %f, %f", fix.Lat, fix.Lon)
	}
	if len(raw) == 0 {
		t.Error("raw response should be returned for caching")
	}
}

func TestClient_SearchNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if _, _, err := c.Search(context.Background(), "nowhere at all"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_SearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if _, _, err := c.Search(context.Background(), "anywhere"); err == nil {
		t.Error("expected error on server failure")
	}
}

func TestClient_SearchBadCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"13.4","display_name":"x"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if _, _, err := c.Search(context.Background(), "x"); err == nil {
		t.Error("expected error for unparsable latitude")
	}
}
