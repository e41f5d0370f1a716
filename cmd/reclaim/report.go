package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

type attemptJSON struct {
	Strategy   string `json:"strategy"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type outcomeJSON struct {
	Path         string        `json:"path"`
	Status       string        `json:"status"`
	Attempts     []attemptJSON `json:"attempts"`
	DeferredPath string        `json:"deferred_path,omitempty"`
	StaleRemoved []string      `json:"stale_removed,omitempty"`
}

type terminationJSON struct {
	Signature  string `json:"signature"`
	Terminated bool   `json:"terminated"`
	PIDs       []int  `json:"pids,omitempty"`
	Error      string `json:"error,omitempty"`
}

type reportJSON struct {
	ID           string                 `json:"id"`
	StartedAt    string                 `json:"started_at"`
	DurationMS   int64                  `json:"duration_ms"`
	Terminations []terminationJSON      `json:"terminations"`
	Targets      map[string]outcomeJSON `json:"targets"`
	Removed      int                    `json:"removed"`
	Deferred     int                    `json:"deferred"`
	Failed       int                    `json:"failed"`
}

func toReportJSON(r domain.SessionReport) reportJSON {
	out := reportJSON{
		ID:           r.ID,
		StartedAt:    r.StartedAt.UTC().Format(time.RFC3339),
		DurationMS:   r.Duration.Milliseconds(),
		Terminations: make([]terminationJSON, 0, len(r.Terminations)),
		Targets:      make(map[string]outcomeJSON, len(r.Outcomes)),
		Removed:      r.Count(domain.StatusRemoved),
		Deferred:     r.Count(domain.StatusDeferredRemoved),
		Failed:       r.Count(domain.StatusFailed),
	}
	for _, t := range r.Terminations {
		out.Terminations = append(out.Terminations, terminationJSON{
			Signature:  t.Signature.Name,
			Terminated: t.Terminated,
			PIDs:       t.PIDs,
			Error:      errString(t.Err),
		})
	}
	for label, o := range r.Outcomes {
		oj := outcomeJSON{
			Path:         o.Target.Path,
			Status:       string(o.Status),
			Attempts:     make([]attemptJSON, 0, len(o.Attempts)),
			DeferredPath: o.DeferredPath,
			StaleRemoved: o.StaleRemoved,
		}
		for _, a := range o.Attempts {
			oj.Attempts = append(oj.Attempts, attemptJSON{
				Strategy:   a.Strategy.String(),
				Success:    a.Success,
				Error:      errString(a.Err),
				Detail:     a.Detail,
				DurationMS: a.Duration.Milliseconds(),
			})
		}
		out.Targets[label] = oj
	}
	return out
}

func printReportJSON(w io.Writer, r domain.SessionReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toReportJSON(r))
}

func printReport(w io.Writer, r domain.SessionReport) {
	fmt.Fprintf(w, "\n=== Reclamation %s ===\n", r.ID)

	var killed []string
	for _, t := range r.Terminations {
		if t.Terminated {
			killed = append(killed, fmt.Sprintf("%s%v", t.Signature.Name, t.PIDs))
		}
	}
	if len(killed) > 0 {
		fmt.Fprintf(w, "Terminated: %s\n", strings.Join(killed, ", "))
	}

	for _, label := range r.Labels() {
		o := r.Outcomes[label]
		fmt.Fprintf(w, "\n[%s] %s\n", strings.ToUpper(string(o.Status)), label)
		fmt.Fprintf(w, "  Path: %s\n", o.Target.Path)
		if len(o.Attempts) == 0 {
			fmt.Fprintln(w, "  Nothing to remove")
		}
		for _, a := range o.Attempts {
			mark := "x"
			if a.Success {
				mark = "ok"
			}
			line := fmt.Sprintf("  %d. %-9s %s", a.Strategy.Ordinal(), a.Strategy, mark)
			if a.Err != nil {
				line += ": " + a.Err.Error()
			}
			if a.Detail != "" {
				line += " (" + a.Detail + ")"
			}
			fmt.Fprintln(w, line)
		}
		if o.DeferredPath != "" {
			fmt.Fprintf(w, "  Background removal: %s\n", o.DeferredPath)
		}
		if len(o.StaleRemoved) > 0 {
			fmt.Fprintf(w, "  Old leftovers removed: %d\n", len(o.StaleRemoved))
		}
	}

	fmt.Fprintf(w, "\nRemoved: %d  Deferred: %d  Failed: %d  (%s)\n",
		r.Count(domain.StatusRemoved), r.Count(domain.StatusDeferredRemoved), r.Count(domain.StatusFailed),
		r.Duration.Round(time.Millisecond))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
