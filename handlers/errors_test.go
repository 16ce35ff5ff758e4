package handlers

import (
	"database/sql/driver"
	"testing"

	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/common"
	"github.com/pkg/errors"
)

func TestRecoverableError(t *testing.T) {
	var err error
	err = NewRecoverableError("unable to reach %s", "the notification store")

	// Verify that we got the expected error message.
	if err.Error() != "unable to reach the notification store" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	// Verify that the type is still considered to be an error.
	_, ok := err.(error)
	if !ok {
		t.Errorf("RecoverableError doesn't appear to be an error")
	}

	// Verify that a RecoverableError was actually returned.
	_, ok = err.(RecoverableError)
	if !ok {
		t.Errorf("The error doesn't appear to be a RecoverableError")
	}

	// The type must be distinct from an unrecoverable error.
	_, ok = err.(UnrecoverableError)
	if ok {
		t.Errorf("The error appears to be an UnrecoverableError")
	}
}

func TestUnrecoverableError(t *testing.T) {
	var err error
	err = NewUnrecoverableError("unsupported alert type: %s", "PRICE")

	// Verify that we get the expected error message.
	if err.Error() != "unsupported alert type: PRICE" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	// Verify that the type is still considered to be an error.
	_, ok := err.(error)
	if !ok {
		t.Errorf("UnrecoverableError doesn't appear to be an error")
	}

	// Verify that an UnrecoverableError was actually returned.
	_, ok = err.(UnrecoverableError)
	if !ok {
		t.Errorf("The error doesn't appear to be an UnrecoverableError")
	}

	// The type must be distinct from a RecoverableError
	_, ok = err.(RecoverableError)
	if ok {
		t.Errorf("The error appears to be a RecoverableError")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		recoverable bool
	}{
		{"unavailable", common.NewDependencyUnavailableError(driver.ErrBadConn, "store down"), true},
		{"wrapped unavailable", errors.Wrap(common.NewDependencyUnavailableError(driver.ErrBadConn, "x"), "y"), true},
		{"not found", common.NewNotFoundError("product `%s` not found", "p1"), false},
		{"duplicate", common.NewDuplicateError("alert exists"), false},
		{"validation", common.NewValidationError("bad alert type"), false},
		{"untyped", errors.New("unexpected"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			classified := classify(tc.err)
			_, recoverable := classified.(RecoverableError)
			_, unrecoverable := classified.(UnrecoverableError)
			if recoverable != tc.recoverable || unrecoverable == tc.recoverable {
				t.Errorf("unexpected classification for %q: %T", tc.err, classified)
			}
			if classified.Error() != tc.err.Error() {
				t.Errorf("the error message was not preserved: %s", classified.Error())
			}
		})
	}

	if classify(nil) != nil {
		t.Errorf("a nil error should stay nil")
	}
}
