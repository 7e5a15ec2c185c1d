package service

import (
	"errors"
	"fmt"
	"strings"
)

// Steps of the admin write at which the backend can fail.
const (
	StepInsert      = "insert"
	StepUpdate      = "update"
	StepUpload      = "upload"
	StepUpdatePaths = "update-paths"
)

// ErrUnauthorized is returned when the admin secret or session is wrong.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError lists the required form fields that were missing and the
// values that were received for them.
type ValidationError struct {
	Fields []string
	Got    map[string]interface{}
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// BackendError wraps a storage or database failure with the step it
// happened at.  GuestID is set once the row exists, so a failed upload still
// tells the caller which id to resubmit with.
type BackendError struct {
	Step    string
	GuestID uint64
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
