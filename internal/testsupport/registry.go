package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeRegistry is an in-memory Companies House API served over httptest.
type FakeRegistry struct {
	URL string

	mu       sync.Mutex
	profiles map[string]map[string]any
	searches map[string][]map[string]any
	failures map[string]int
	requests []string
}

// NewFakeRegistry starts a fake registry server that is closed on cleanup.
func NewFakeRegistry(t testing.TB) *FakeRegistry {
	t.Helper()
	f := &FakeRegistry{
		profiles: make(map[string]map[string]any),
		searches: make(map[string][]map[string]any),
		failures: make(map[string]int),
	}
	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)
	f.URL = server.URL
	return f
}

// AddCompany registers a company profile. Keys follow the registry's JSON
// field names (company_name, company_status, date_of_creation, ...).
func (f *FakeRegistry) AddCompany(number string, fields map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := map[string]any{"company_number": number}
	for k, v := range fields {
		profile[k] = v
	}
	f.profiles[number] = profile
}

// AddSearch registers the items returned for an exact query string.
func (f *FakeRegistry) AddSearch(query string, items ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches[query] = items
}

// Fail makes requests whose path or query equals key return status.
func (f *FakeRegistry) Fail(key string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[key] = status
}

// Requests returns the request paths (with query) served so far.
func (f *FakeRegistry) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *FakeRegistry) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.URL.RequestURI())

	if _, _, ok := r.BasicAuth(); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch {
	case strings.HasPrefix(r.URL.Path, "/company/"):
		number := strings.TrimPrefix(r.URL.Path, "/company/")
		if status, ok := f.failures[r.URL.Path]; ok {
			w.WriteHeader(status)
			return
		}
		profile, ok := f.profiles[number]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, profile)
	case r.URL.Path == "/search/companies":
		query := r.URL.Query().Get("q")
		if status, ok := f.failures[query]; ok {
			w.WriteHeader(status)
			return
		}
		items := f.searches[query]
		if items == nil {
			items = []map[string]any{}
		}
		writeJSON(w, map[string]any{"items": items, "total_results": len(items)})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
