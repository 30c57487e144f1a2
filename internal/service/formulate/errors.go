package formulate

import (
	"context"
	"errors"
	"strings"
)

// Kind classifies collaborator failures for callers.
type Kind string

const (
	KindCredentials Kind = "credentials"
	KindTimeout     Kind = "timeout"
	KindMalformed   Kind = "malformed_request"
	KindGeneric     Kind = "generic"
)

var errNoClient = errors.New("ai client is not configured")

// Error is a collaborator failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var messages = map[Kind]string{
	KindCredentials: "The AI API key is missing, invalid or lacks the required permissions. Check the configured key.",
	KindTimeout:     "The AI took too long to respond. Try again in a few moments.",
	KindMalformed:   "The request to the AI was malformed. Review the ingredient data; if the problem persists it may be a temporary AI error.",
	KindGeneric:     "Could not get a valid response from the AI. The model may be overloaded or the input is not valid.",
}

// classify maps a collaborator error onto a Kind by its text.
func classify(err error) *Error {
	kind := KindGeneric
	lower := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, errNoClient),
		strings.Contains(lower, "api key not valid"),
		strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "api_key"),
		strings.Contains(lower, "x-api-key"),
		strings.Contains(lower, "authentication_error"):
		kind = KindCredentials
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(lower, "deadline exceeded"):
		kind = KindTimeout
	case strings.Contains(lower, "400"):
		kind = KindMalformed
	}

	return &Error{Kind: kind, Message: messages[kind], Err: err}
}
