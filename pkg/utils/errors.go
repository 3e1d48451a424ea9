package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrConfiguration = errors.New("pipeline used before configuration") // Caller bug: options never initialized
	ErrFetch         = errors.New("asset fetch failed")                 // Wraps transport/status errors
	ErrWrite         = errors.New("asset write failed")                 // Wraps filesystem write errors
	ErrCleanup       = errors.New("stale asset cleanup failed")         // Non-fatal, logged during sweep
	ErrBytesRequired = errors.New("naming strategy requires downloaded bytes")

	ErrClientHTTPError = errors.New("client HTTP error (4xx)")    // Wraps original error/status
	ErrServerHTTPError = errors.New("server HTTP error (5xx)")    // Wraps original error/status
	ErrOtherHTTPError  = errors.New("other HTTP error (non-2xx)") // Wraps original error/status

	ErrFilesystem      = errors.New("filesystem error") // Wraps os errors
	ErrDatabase        = errors.New("database error")   // Wraps badger errors
	ErrRequestCreation = errors.New("failed to create HTTP request")
)

// WrapErrorf wraps a sentinel error with formatted context.
func WrapErrorf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// CategorizeError maps an error to a predefined category string for logging and run summaries.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	// Check against sentinel errors first
	switch {
	case errors.Is(err, ErrConfiguration):
		return "Config_Uninitialized"
	case errors.Is(err, ErrBytesRequired):
		return "Naming_BytesRequired"
	case errors.Is(err, ErrFetch):
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, " 404 "):
			return "Fetch_HTTP_404"
		case strings.Contains(errMsg, " 403 "):
			return "Fetch_HTTP_403"
		case errors.Is(err, ErrClientHTTPError):
			return "Fetch_HTTP_4xx"
		case errors.Is(err, ErrServerHTTPError):
			return "Fetch_HTTP_5xx"
		case errors.Is(err, ErrOtherHTTPError):
			return "Fetch_HTTP_OtherStatus"
		case errors.Is(err, context.DeadlineExceeded):
			return "Fetch_Timeout"
		}
		return "Fetch_Network"
	case errors.Is(err, ErrWrite):
		if errors.Is(err, os.ErrPermission) {
			return "Write_Permission"
		}
		return "Write_Other"
	case errors.Is(err, ErrCleanup):
		return "Cleanup_Delete"
	case errors.Is(err, ErrClientHTTPError):
		return "HTTP_4xx"
	case errors.Is(err, ErrServerHTTPError):
		return "HTTP_5xx"
	case errors.Is(err, ErrOtherHTTPError):
		return "HTTP_OtherStatus"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		return "Filesystem_Other"
	case errors.Is(err, ErrDatabase):
		return "Database_Other"
	case errors.Is(err, ErrRequestCreation):
		return "Internal_RequestCreation"
	}

	// --- Fallback checks for common underlying error types/strings ---

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Network_Timeout"
	}
	lowerErrMsg := strings.ToLower(err.Error())
	if strings.Contains(lowerErrMsg, "timeout") {
		return "Network_TimeoutGeneric"
	}
	if strings.Contains(lowerErrMsg, "connection refused") {
		return "Network_ConnectionRefused"
	}
	if strings.Contains(lowerErrMsg, "no such host") {
		return "Network_DNSLookup"
	}

	return "Unknown"
}
