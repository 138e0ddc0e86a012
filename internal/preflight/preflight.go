package preflight

import (
	"context"
	"time"

	"lecturebot/internal/config"
	"lecturebot/internal/services/nextcloud"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Intake directory", cfg.Intake.TempDir),
	}

	cloud, err := nextcloud.NewClient(nextcloud.Config{
		URL:      cfg.Nextcloud.URL,
		Username: cfg.Nextcloud.Username,
		Password: cfg.Nextcloud.Password,
		Timeout:  time.Duration(cfg.Nextcloud.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		results = append(results, Result{Name: "Nextcloud", Detail: err.Error()})
	} else {
		results = append(results, CheckNextcloud(ctx, cloud))
	}

	results = append(results,
		CheckLLM(ctx, "VseGPT API", cfg.LLM.BaseURL, cfg.LLM.APIKey),
		CheckFont("Regular font", cfg.Render.FontPath),
		CheckFont("Bold font", cfg.Render.FontBoldPath),
	)
	if cfg.Render.FontMonoPath != "" {
		results = append(results, CheckFont("Monospace font", cfg.Render.FontMonoPath))
	}
	return results
}
