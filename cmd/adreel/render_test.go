package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"adreel/internal/encoding"
	"adreel/internal/preflight"
	"adreel/internal/services"
	"adreel/internal/workflow"
)

func TestCheckLine(t *testing.T) {
	tests := []struct {
		result preflight.Result
		want   string
	}{
		{preflight.Result{Name: "FFmpeg", Passed: true, Detail: "/usr/bin/ffmpeg"}, "[OK] /usr/bin/ffmpeg"},
		{preflight.Result{Name: "Ads directory", Optional: true, Detail: "missing"}, "[WARN] missing"},
		{preflight.Result{Name: "Work root", Detail: "not configured"}, "[ERROR] not configured"},
	}
	for _, tt := range tests {
		got := checkLine(tt.result, false)
		if !strings.HasSuffix(got, tt.want) || !strings.HasPrefix(got, "  "+tt.result.Name+":") {
			t.Fatalf("checkLine(%+v) = %q", tt.result, got)
		}
		if strings.Contains(got, "\x1b[") {
			t.Fatalf("uncoloured line contains escapes: %q", got)
		}
	}
}

func TestRenderSummaryShowsWarningsSeparately(t *testing.T) {
	started := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	summary := workflow.Summary{
		Started:  started,
		Finished: started.Add(90 * time.Minute),
		Reports: []workflow.JobReport{
			{
				Job:      workflow.MovieJob{Source: "/m/A.mkv", RelDir: "."},
				Outcome:  services.OutcomeSucceeded,
				Chunks:   4,
				Ads:      3,
				Duration: 107,
				Warnings: []encoding.Warning{{Kind: "non_monotonic_dts", Count: 12}},
			},
			{
				Job:     workflow.MovieJob{Source: "/m/drama/B.mkv", RelDir: "drama"},
				Outcome: services.OutcomeFailed,
				Err:     errors.New("external tool error: ffmpeg: segment: Invalid data found\nmore detail"),
			},
		},
	}

	out := renderSummary(summary)
	for _, want := range []string{
		"succeeded (warnings)",
		"non_monotonic_dts x12",
		"drama/B.mkv",
		"Invalid data found",
		"1 with warnings",
		"1m47s",
		"1h30m0s",
	} {
		requireContains(t, out, want)
	}
	if strings.Contains(out, "more detail") {
		t.Fatalf("notes should keep only the first error line:\n%s", out)
	}
}
