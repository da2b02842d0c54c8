// ABOUTME: Tests for Request, Draft and Response helpers
// ABOUTME: Verifies emptiness checks and error response construction

package models

import (
	"testing"
	"time"
)

func TestRequestIsEmpty(t *testing.T) {
	var nilReq *Request

	tests := []struct {
		name string
		req  *Request
		want bool
	}{
		{"nil request", nilReq, true},
		{"zero request", &Request{}, true},
		{"empty non-nil context", &Request{Context: map[string]any{}}, false},
		{"query only", &Request{Query: "hello"}, false},
		{"timestamp only", &Request{Timestamp: time.Now()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDraftIsEmpty(t *testing.T) {
	var nilDraft *Draft
	if !nilDraft.IsEmpty() {
		t.Error("nil draft should be empty")
	}
	if !(&Draft{}).IsEmpty() {
		t.Error("zero draft should be empty")
	}
	if (&Draft{Data: []DataPoint{}}).IsEmpty() {
		t.Error("draft with data slice should not be empty")
	}
	if (&Draft{Content: "ok"}).IsEmpty() {
		t.Error("draft with content should not be empty")
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("Empty request", nil)

	if resp.Success {
		t.Error("Success = true, want false")
	}
	if resp.Error != "Empty request" {
		t.Errorf("Error = %q, want %q", resp.Error, "Empty request")
	}
	if resp.ErrorDetails == nil || len(resp.ErrorDetails) != 0 {
		t.Errorf("ErrorDetails = %v, want empty non-nil slice", resp.ErrorDetails)
	}
	if resp.Data == nil {
		t.Error("Data should be an empty slice, not nil")
	}
	if resp.Confidence != 0 {
		t.Errorf("Confidence = %f, want 0", resp.Confidence)
	}

	ts, ok := resp.Metadata["timestamp"].(string)
	if !ok {
		t.Fatal("metadata timestamp missing")
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
	}

	withDetails := NewErrorResponse("Input validation failed", []string{"Missing or empty query"})
	if len(withDetails.ErrorDetails) != 1 {
		t.Errorf("ErrorDetails = %v, want one entry", withDetails.ErrorDetails)
	}
}
