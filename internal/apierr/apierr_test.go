package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errMissing = errors.New("missing")

func TestFrom(t *testing.T) {
	mappings := []Mapping{{Target: errMissing, Status: http.StatusNotFound, Code: "not_found"}}

	got := From(fmt.Errorf("lookup deck: %w", errMissing), mappings...)
	if got.Status != http.StatusNotFound || got.Code != "not_found" {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if !errors.Is(got, errMissing) {
		t.Fatal("mapped error lost its cause")
	}

	got = From(errors.New("boom"), mappings...)
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("unmapped status = %d", got.Status)
	}

	pre := New(http.StatusBadRequest, "malformed_input", nil)
	if From(fmt.Errorf("wrapped: %w", pre)) != pre {
		t.Fatal("existing api error not passed through")
	}
}

func TestErrorMessage(t *testing.T) {
	if msg := New(http.StatusTeapot, "", nil).Error(); msg != "api error (418)" {
		t.Fatalf("Error() = %q", msg)
	}
	if msg := New(0, "code_only", nil).Error(); msg != "code_only" {
		t.Fatalf("Error() = %q", msg)
	}
}
