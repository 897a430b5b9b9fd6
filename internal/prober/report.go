package prober

import (
	"bytes"
	"encoding/json"
	"time"
)

// Result is the outcome of one check.
type Result struct {
	Check  string
	Method string
	URL    string
	// Auth reports whether an Authorization header was sent.
	Auth   bool
	Status int
	OK     bool
	Body   []byte
	// Parsed holds the decoded JSON body for successful responses; nil otherwise.
	Parsed   any
	Duration time.Duration
}

// formatBody renders the body as JSON (indented or compact, keeping the
// server's field order), or raw text when it is not JSON.
func (r Result) formatBody(indent bool) string {
	if r.Parsed == nil {
		return string(r.Body)
	}
	var buf bytes.Buffer
	var err error
	if indent {
		err = json.Indent(&buf, r.Body, "", "  ")
	} else {
		err = json.Compact(&buf, r.Body)
	}
	if err != nil {
		return string(r.Body)
	}
	return buf.String()
}

// Report collects the results of one pass, in execution order.
type Report struct {
	Results []Result
}

// OK is true when every check returned a success status.
func (rep Report) OK() bool {
	for _, r := range rep.Results {
		if !r.OK {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not succeed.
func (rep Report) Failed() []Result {
	var out []Result
	for _, r := range rep.Results {
		if !r.OK {
			out = append(out, r)
		}
	}
	return out
}
