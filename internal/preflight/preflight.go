package preflight

import (
	"context"
	"fmt"
	"strings"

	"chmatch/internal/config"
	"chmatch/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Paths names the files a batch run reads and writes.
type Paths struct {
	Input  string
	Output string
}

// RunAll executes all applicable preflight checks. pinger may be nil to skip
// the registry check.
func RunAll(ctx context.Context, cfg *config.Config, paths Paths, pinger Pinger) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if paths.Input != "" {
		results = append(results, CheckFileReadable("Input workbook", paths.Input))
	}
	if paths.Output != "" {
		results = append(results, CheckOutputPath("Output workbook", paths.Output))
	}
	if pinger != nil {
		results = append(results, CheckRegistry(ctx, pinger))
	}
	return results
}

// Err folds failed results into a single validation error, or nil.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "preflight", "", strings.Join(failed, "; "), nil)
}
