// Package debug provides verbose-mode instrumentation for check_hycu:
// check timings, API call traces and raw metric dumps, all written to
// stderr so stdout carries only the plugin result.
package debug

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// TraceEntry is one recorded API round trip.
type TraceEntry struct {
	Method   string
	Path     string
	Status   int
	Duration time.Duration
	Err      error
}

// TraceLogger provides step-by-step trace logging for API calls.
type TraceLogger struct {
	mu      sync.Mutex
	writer  io.Writer
	enabled bool
	entries []TraceEntry
}

// NewTraceLogger creates a trace logger writing to the given writer.
// A nil writer selects stderr.
func NewTraceLogger(w io.Writer) *TraceLogger {
	if w == nil {
		w = defaultTraceWriter()
	}
	return &TraceLogger{
		writer:  w,
		enabled: true,
	}
}

// SetEnabled toggles live trace lines. Entries are recorded either way.
func (t *TraceLogger) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Log records a trace entry for a step.
func (t *TraceLogger) Log(scope, step, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	fmt.Fprintf(t.writer, "[TRACE %s] %s: %s - %s\n",
		time.Now().Format("15:04:05.000"), scope, step, detail)
}

// Record stores a round trip and logs it.
func (t *TraceLogger) Record(e TraceEntry) {
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()

	detail := fmt.Sprintf("status=%d elapsed=%v", e.Status, e.Duration.Round(time.Millisecond))
	if e.Err != nil {
		detail = "error=" + e.Err.Error()
	}
	t.Log("api", e.Method+" "+e.Path, detail)
}

// Entries returns a copy of the recorded round trips.
func (t *TraceLogger) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// TraceTransport is an http.RoundTripper that records every request into a
// TraceLogger. Query strings are not recorded.
type TraceTransport struct {
	Base   http.RoundTripper
	Logger *TraceLogger
}

// NewTraceTransport wraps base. A nil base selects http.DefaultTransport.
func NewTraceTransport(base http.RoundTripper, logger *TraceLogger) *TraceTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &TraceTransport{Base: base, Logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *TraceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(req)

	entry := TraceEntry{
		Method:   req.Method,
		Path:     req.URL.Path,
		Duration: time.Since(start),
		Err:      err,
	}
	if resp != nil {
		entry.Status = resp.StatusCode
	}
	t.Logger.Record(entry)
	return resp, err
}

// TraceReport prints a styled summary of all recorded API calls.
func TraceReport(w io.Writer, entries []TraceEntry) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("API Trace Report"))
	fmt.Fprintln(w, debugDim.Render(strings.Repeat("═", 70)))
	fmt.Fprintf(w, "  %s %s %s %s\n",
		debugHeader.Render("METHOD"),
		debugHeader.Render("PATH                                "),
		debugHeader.Render("STATUS"),
		debugHeader.Render("DURATION  "))
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 70)))

	var total time.Duration
	for _, e := range entries {
		status := fmt.Sprintf("%d", e.Status)
		if e.Err != nil {
			status = "ERR"
		}
		fmt.Fprintf(w, "  %-8s %-38s %-8s %v\n", e.Method, e.Path, status, e.Duration.Round(time.Millisecond))
		total += e.Duration
	}
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 70)))
	fmt.Fprintf(w, "  %d calls, %v\n", len(entries), total.Round(time.Millisecond))
}

// defaultTraceWriter returns stderr for trace output.
func defaultTraceWriter() io.Writer {
	return os.Stderr
}
