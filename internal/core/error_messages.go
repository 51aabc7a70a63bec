package core

// error_messages.go maps technical errors to user-facing messages with a
// code for support reference.
//
// Sentinel errors are matched first with errors.Is / errors.As. Anything
// else is matched case-insensitively against errorPatterns; the first
// matching pattern wins, so specific patterns come before general ones.
//
//	SRC001 - A source could not be loaded (bad JSON/YAML, unreadable file)
//	SRC002 - A source produced no fields
//	TBL001 - No source produced any data
//	TBL002 - Table file has no instrument column
//	ROW001 - Instrument not found
//	ROW002 - Row index out of range
//	FILE001 - Invalid JSON document
//	FILE002 - Invalid YAML document
//	FILE003 - Invalid CSV table file
//	REQ001 - Missing or invalid request parameter
//	DB001-DB004 - Snapshot store errors
//	ERR000 - Anything else

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgSourceLoad = UserMessage{
		Message: "A source could not be loaded",
		Action:  "Check that every file in the instrument directory is valid JSON or YAML",
		Code:    "SRC001",
	}
	msgEmptySource = UserMessage{
		Message: "A source produced no fields",
		Action:  "Add documents to the instrument directory or remove it",
		Code:    "SRC002",
	}
	msgNoData = UserMessage{
		Message: "No data to write",
		Action:  "Point the data root at a directory with one subdirectory per instrument",
		Code:    "TBL001",
	}
	msgMissingIdentifier = UserMessage{
		Message: "The table file has no instrument column",
		Action:  "Rebuild the table with the build command",
		Code:    "TBL002",
	}
	msgRowNotFound = UserMessage{
		Message: "Instrument not found",
		Action:  "List the available instruments and check the spelling",
		Code:    "ROW001",
	}
	msgIndexOutOfRange = UserMessage{
		Message: "Row index is invalid",
		Action:  "Use a 0-based index smaller than the number of rows",
		Code:    "ROW002",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "invalid json",
		msg: UserMessage{
			Message: "A document is not valid JSON",
			Action:  "Validate the file with a JSON linter",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid yaml",
		msg: UserMessage{
			Message: "A document is not valid YAML",
			Action:  "Validate the file with a YAML linter",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The table file is not a valid CSV",
			Action:  "Rebuild the table with the build command",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid parameter",
		msg: UserMessage{
			Message: "The request has a missing or invalid parameter",
			Action:  "Check the query parameters and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "snapshot not found",
		msg: UserMessage{
			Message: "Snapshot not found",
			Action:  "List snapshots and check the id",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "DB004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var loadErr *SourceLoadError
	switch {
	case errors.Is(err, ErrRowNotFound):
		return msgRowNotFound
	case errors.Is(err, ErrIndexOutOfRange):
		return msgIndexOutOfRange
	case errors.Is(err, ErrNoData):
		return msgNoData
	case errors.Is(err, ErrMissingIdentifier):
		return msgMissingIdentifier
	case errors.Is(err, ErrEmptySource):
		return msgEmptySource
	case errors.As(err, &loadErr):
		// More specific file messages win over the generic source one.
		if msg, ok := matchPattern(err); ok {
			return msg
		}
		return msgSourceLoad
	}

	if msg, ok := matchPattern(err); ok {
		return msg
	}
	return defaultMessage
}

func matchPattern(err error) (UserMessage, bool) {
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
}

// FormatUserError returns a single-line user message for err.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsLookupError reports whether err is a row lookup failure the caller can
// show to the user and move on from.
func IsLookupError(err error) bool {
	return errors.Is(err, ErrRowNotFound) || errors.Is(err, ErrIndexOutOfRange)
}
