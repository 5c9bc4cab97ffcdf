package postcodes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chmatch/internal/config"
	"chmatch/internal/services"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestAdminDistrict(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/postcodes/LS1 4AP" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":200,"result":{"postcode":"LS1 4AP","admin_district":"Leeds","region":"Yorkshire and The Humber"}}`))
	})
	got, err := client.AdminDistrict(context.Background(), " LS1 4AP ")
	if err != nil {
		t.Fatalf("AdminDistrict: %v", err)
	}
	if got != "Leeds" {
		t.Fatalf("expected Leeds, got %q", got)
	}
}

func TestAdminDistrictNotFound(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":404,"error":"Invalid postcode"}`))
	})
	_, err := client.AdminDistrict(context.Background(), "ZZ1 1ZZ")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminDistrictServerError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.AdminDistrict(context.Background(), "LS1 4AP")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestAdminDistrictNullResult(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":200,"result":null}`))
	})
	got, err := client.AdminDistrict(context.Background(), "LS1 4AP")
	if err != nil || got != "" {
		t.Fatalf("expected empty district, got %q, %v", got, err)
	}
}

func TestAdminDistrictRejectsEmpty(t *testing.T) {
	client, err := NewFromConfig(config.Default().Postcodes, nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, err := client.AdminDistrict(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
