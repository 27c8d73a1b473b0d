package github

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"

	prerrors "prsummary.dev/prsummary/internal/errors"
)

// classifyREST maps a go-github error onto the error taxonomy. kind and name
// describe the object the call was about, for NotFound reporting.
func classifyREST(op, kind, name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		status := errResp.Response.StatusCode
		// 422 is what compare returns for an unknown ref
		if status == http.StatusNotFound || (status == http.StatusUnprocessableEntity && kind == "ref") {
			return prerrors.NewNotFoundError(kind, name, err)
		}
		return prerrors.NewTransportError(op, status, err)
	}
	return prerrors.NewTransportError(op, 0, err)
}

// classifyGraphQL maps a githubv4 error onto the error taxonomy. GraphQL
// reports missing objects as errors with a 200 status.
func classifyGraphQL(op, kind, name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "Could not resolve to") || strings.Contains(msg, "NOT_FOUND") {
		return prerrors.NewNotFoundError(kind, name, err)
	}
	return prerrors.NewTransportError(op, 0, err)
}
