package batch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"chmatch/internal/config"
	"chmatch/internal/matching"
	"chmatch/internal/postcodes"
	"chmatch/internal/records"
	"chmatch/internal/registry"
	"chmatch/internal/store"
	"chmatch/internal/testsupport"
)

type resolverFunc func(ctx context.Context, rec records.Record) matching.Outcome

func (f resolverFunc) Resolve(ctx context.Context, rec records.Record) matching.Outcome {
	return f(ctx, rec)
}

var headers = []string{
	"Company Registration Number",
	"Companies House name",
	"Organisation Name",
	"Date Company Incorporated",
	"Headquarters",
	"Registered Postcode",
}

func makeRecords(n int) []records.Record {
	recs := make([]records.Record, n)
	for i := range recs {
		recs[i] = records.New(i+2, headers, []string{"", "Org", "", "", "", ""})
	}
	return recs
}

func matched(confidence int) matching.Outcome {
	return matching.Outcome{
		MatchType:  matching.MatchName,
		Confidence: confidence,
		Tier:       matching.TierPrimaryName,
		Resolved:   &matching.Resolved{Name: "ORG LTD", Number: "01234567"},
	}
}

func newAccessor() *records.Accessor {
	return records.NewAccessor(config.Default().Fields)
}

func TestTallyAccumulates(t *testing.T) {
	var tally Tally
	tally.Add(matched(10))
	tally.Add(matching.NoMatch())
	tally.Add(matching.ErrorOutcome(errors.New("boom")))
	tally.Add(matched(10))

	if tally.Processed != 4 || tally.Matched != 2 || tally.NeedsReview != 2 || tally.Errors != 1 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
	if got := tally.ReviewRate(); got != 0.5 {
		t.Fatalf("ReviewRate = %v, want 0.5", got)
	}
	if got := (Tally{}).ReviewRate(); got != 0 {
		t.Fatalf("empty ReviewRate = %v, want 0", got)
	}
	want := map[string]int{"name_match": 2, "no_match": 1, "error": 1}
	if diff := cmp.Diff(want, tally.Counts()); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessRecoversPanics(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	res := resolverFunc(func(_ context.Context, rec records.Record) matching.Outcome {
		if rec.Row == 3 {
			panic("unexpected nil")
		}
		return matched(10)
	})
	runner := NewRunner(cfg, res, newAccessor())

	results, tally, err := runner.Process(context.Background(), makeRecords(3), 0)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	failed := results[1].Outcome
	if failed.MatchType != matching.MatchError || !failed.NeedsReview {
		t.Fatalf("expected review error outcome, got %+v", failed)
	}
	if !strings.Contains(failed.Err, "unexpected nil") {
		t.Fatalf("error message lost: %q", failed.Err)
	}
	if results[2].Outcome.MatchType != matching.MatchName {
		t.Fatalf("batch did not continue after panic: %+v", results[2].Outcome)
	}
	if tally.Errors != 1 || tally.Processed != 3 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
}

func TestProcessHonoursLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	calls := 0
	res := resolverFunc(func(context.Context, records.Record) matching.Outcome {
		calls++
		return matched(10)
	})
	runner := NewRunner(cfg, res, newAccessor())

	results, tally, err := runner.Process(context.Background(), makeRecords(5), 2)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if calls != 2 || len(results) != 2 || tally.Processed != 2 {
		t.Fatalf("limit not honoured: calls=%d results=%d tally=%+v", calls, len(results), tally)
	}
}

func TestProcessStopsBetweenRecordsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res := resolverFunc(func(context.Context, records.Record) matching.Outcome {
		cancel()
		return matched(10)
	})
	runner := NewRunner(cfg, res, newAccessor())

	results, tally, err := runner.Process(ctx, makeRecords(4), 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) != 1 || tally.Processed != 1 {
		t.Fatalf("expected one processed record, got %d", len(results))
	}
}

func TestProcessIdentifierTransportErrorFallsThroughToName(t *testing.T) {
	fake := testsupport.NewFakeRegistry(t)
	fake.Fail("/company/01234567", http.StatusInternalServerError)
	fake.AddSearch("Acme Widgets Ltd", map[string]any{
		"title":            "ACME WIDGETS LTD",
		"company_number":   "01234567",
		"company_status":   "active",
		"date_of_creation": "2001-05-04",
	})
	cfg := testsupport.NewConfig(t, testsupport.WithRegistryURL(fake.URL), testsupport.WithCache(false))
	client, err := registry.NewFromConfig(cfg, nil, nil)
	if err != nil {
		t.Fatalf("registry.NewFromConfig: %v", err)
	}
	accessor := newAccessor()
	resolver := matching.NewResolver(client, accessor, matching.PolicyFromConfig(cfg.Matching), nil)
	runner := NewRunner(cfg, resolver, accessor)

	rec := records.New(2, headers, []string{"01234567", "Acme Widgets Ltd", "", "", "", ""})
	results, tally, err := runner.Process(context.Background(), []records.Record{rec}, 0)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	out := results[0].Outcome
	if out.MatchType != matching.MatchName {
		t.Fatalf("expected name_match, got %s (err=%q)", out.MatchType, out.Err)
	}
	if out.Err != "" || tally.Errors != 0 {
		t.Fatalf("transport error leaked into outcome: %+v", out)
	}
	if out.Resolved == nil || out.Resolved.Number != "01234567" {
		t.Fatalf("unexpected resolved company: %+v", out.Resolved)
	}
}

func newPostcodeServer(t *testing.T, districts map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/postcodes/")
		district, ok := districts[code]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":404,"error":"Invalid postcode"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200,"result":{"admin_district":"` + district + `"}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func readOutput(t *testing.T, path, sheet string) []map[string]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read output rows: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("output has no header row")
	}
	var out []map[string]string
	for _, row := range rows[1:] {
		values := make(map[string]string, len(rows[0]))
		for i, h := range rows[0] {
			if i < len(row) {
				values[h] = row[i]
			}
		}
		out = append(out, values)
	}
	return out
}

func TestRunWritesEnrichedWorkbookAndRecordsRun(t *testing.T) {
	fake := testsupport.NewFakeRegistry(t)
	fake.AddCompany("01234567", map[string]any{
		"company_name":     "ACME WIDGETS LTD",
		"company_status":   "active",
		"date_of_creation": "2001-05-04",
		"type":             "ltd",
		"sic_codes":        []string{"62012", "62020"},
		"registered_office_address": map[string]any{
			"locality":    "Leeds",
			"postal_code": "LS1 4AP",
		},
		"previous_company_names": []map[string]any{{"name": "ACME TOOLS LTD"}},
	})
	pc := newPostcodeServer(t, map[string]string{"LS1 4AP": "Leeds"})
	cfg := testsupport.NewConfig(t,
		testsupport.WithRegistryURL(fake.URL),
		testsupport.WithPostcodesURL(pc.URL),
	)
	st := testsupport.MustOpenStore(t, cfg)

	base := testsupport.BaseDir(cfg)
	input := filepath.Join(base, "input.xlsx")
	output := filepath.Join(base, "out", "validated.xlsx")
	testsupport.WriteWorkbook(t, input, "Companies", headers, [][]any{
		{"01234567", "Acme Widgets", "", "", "Bradford", ""},
		{"n/a", "Nobody Trading", "", "", "", ""},
	})

	client, err := registry.NewFromConfig(cfg, st, nil)
	if err != nil {
		t.Fatalf("registry.NewFromConfig: %v", err)
	}
	districts, err := postcodes.NewFromConfig(cfg.Postcodes, nil)
	if err != nil {
		t.Fatalf("postcodes.NewFromConfig: %v", err)
	}
	accessor := newAccessor()
	resolver := matching.NewResolver(client, accessor, matching.PolicyFromConfig(cfg.Matching), nil)
	runner := NewRunner(cfg, resolver, accessor, WithStore(st), WithDistricts(districts))

	report, err := runner.Run(context.Background(), Job{InputPath: input, Sheet: "Companies", OutputPath: output})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Tally.Processed != 2 || report.Tally.Matched != 1 || report.Tally.NeedsReview != 1 {
		t.Fatalf("unexpected tally: %+v", report.Tally)
	}

	rows := readOutput(t, output, "Companies")
	if len(rows) != 2 {
		t.Fatalf("expected 2 output rows, got %d", len(rows))
	}
	first := rows[0]
	wantFirst := map[string]string{
		"match_type":                     "id_match",
		"confidence_score":               "10",
		"needs_manual_review":            "FALSE",
		"match_tier":                     "identifier",
		"Companies House name":           "ACME WIDGETS LTD",
		"Company Status?":                "active",
		"Company Industry(s)":            "62012, 62020",
		"Previous Names":                 "ACME TOOLS LTD",
		"Registered Postcode":            "LS1 4AP",
		"Headquarters":                   "Leeds",
		"Previous Headquarter Locations": "Bradford",
	}
	for header, want := range wantFirst {
		if got := first[header]; got != want {
			t.Errorf("row 1 %q = %q, want %q", header, got, want)
		}
	}
	second := rows[1]
	if second["match_type"] != "no_match" || second["needs_manual_review"] != "TRUE" {
		t.Errorf("row 2 unexpected outcome columns: %+v", second)
	}
	if second["Company Type"] != matching.TypeNotApplicable {
		t.Errorf("row 2 company type = %q, want %q", second["Company Type"], matching.TypeNotApplicable)
	}

	run, err := st.GetRun(context.Background(), report.Run.ID)
	if err != nil || run == nil {
		t.Fatalf("GetRun: %v (run=%v)", err, run)
	}
	if run.Status != store.RunCompleted || run.Processed != 2 || run.NeedsReview != 1 {
		t.Fatalf("unexpected stored run: %+v", run)
	}
	if diff := cmp.Diff(map[string]int{"id_match": 1, "no_match": 1}, run.Counts); diff != "" {
		t.Fatalf("stored counts mismatch (-want +got):\n%s", diff)
	}
	outcomes, err := st.ListOutcomes(context.Background(), run.ID, true)
	if err != nil {
		t.Fatalf("ListOutcomes: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Row != 3 {
		t.Fatalf("expected review outcome for row 3, got %+v", outcomes)
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	runner := NewRunner(cfg, resolverFunc(func(context.Context, records.Record) matching.Outcome {
		t.Fatal("resolver must not run while locked")
		return matching.Outcome{}
	}), newAccessor())
	_, err = runner.Run(context.Background(), Job{InputPath: "unused.xlsx", OutputPath: "unused-out.xlsx"})
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}
