package versionsource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flanksource/vx/internal/manifest"
)

func TestURLSourceParsesStringArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{"1.0.0", "1.1.0", "2.0.0"})
	}))
	defer srv.Close()

	src := NewURLSource()
	got, err := src.Discover(context.Background(), manifest.VersionSource{Kind: "url", URL: srv.URL}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 versions, got %v", got)
	}
}

func TestURLSourceParsesObjectArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"version": "1.0.0"},
			{"tag_name": "v1.1.0"},
		})
	}))
	defer srv.Close()

	src := NewURLSource()
	got, err := src.Discover(context.Background(), manifest.VersionSource{Kind: "url", URL: srv.URL}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 versions, got %v", got)
	}
}

func TestGolangDLSourceFiltersUnstable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]golangRelease{
			{Version: "go1.22.3", Stable: true},
			{Version: "go1.23rc1", Stable: false},
		})
	}))
	defer srv.Close()

	src := NewGolangDLSource()
	got, err := src.Discover(context.Background(), manifest.VersionSource{Kind: "golang_dl", URL: srv.URL}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "go1.22.3" {
		t.Fatalf("expected only stable release, got %v", got)
	}
}

func TestDirectSourceRefusesDiscovery(t *testing.T) {
	src := NewDirectSource()
	if _, err := src.Discover(context.Background(), manifest.VersionSource{Kind: "direct"}, 0); err == nil {
		t.Fatal("expected error from direct source discovery")
	}
}

func TestRegistryUnknownKind(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Discover(context.Background(), manifest.VersionSource{Kind: "nonsense"}, 0)
	if err == nil {
		t.Fatal("expected ErrUnknownKind")
	}
	if _, ok := err.(*ErrUnknownKind); !ok {
		t.Fatalf("expected *ErrUnknownKind, got %T", err)
	}
}
