// Package repository defines error types that are reused across the
// repositories.  These sentinel values allow higher layers such as the
// service and the handlers to distinguish failure scenarios without
// inspecting driver errors.
package repository

import "errors"

// ErrGuestNotFound is returned when a read or update targets an id with no
// row.  Handlers translate it into an HTTP 404 response.
var ErrGuestNotFound = errors.New("guest not found")
