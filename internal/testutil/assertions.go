package testutil

import (
	"errors"
	"testing"

	"expensetracker/internal/client"
	apperrors "expensetracker/internal/errors"
)

// AssertAppError fails unless err carries the expected AppError code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertStatusError fails unless err is an API response with the given
// status and error code. An empty code only checks the status.
func AssertStatusError(t *testing.T, err error, status int, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected HTTP %d, got nil error", status)
	}

	var se *client.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *client.StatusError, got %T: %v", err, err)
	}
	if se.StatusCode != status {
		t.Errorf("expected status %d, got %d (%s)", status, se.StatusCode, se.Message)
	}
	if code != "" && se.Code != code {
		t.Errorf("expected error code %q, got %q", code, se.Code)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
