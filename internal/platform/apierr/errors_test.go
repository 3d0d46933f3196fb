package apierr

import (
	"net/http"
	"testing"
)

func TestToStatusCode(t *testing.T) {
	cases := map[string]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeInternal:     http.StatusInternalServerError,
		"whatever":       http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := ToStatusCode(code); got != want {
			t.Errorf("ToStatusCode(%q) = %d, want %d", code, got, want)
		}
	}
}
