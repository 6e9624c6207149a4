package fetch

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"
)

// RemoteError is a non-success answer of the remote source.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote request failed with status %d: %s", e.Status, e.Body)
}

// asRemoteError converts go-github failures that carry a response into a RemoteError.
func asRemoteError(err error) error {
	var (
		errResp   *github.ErrorResponse
		rateErr   *github.RateLimitError
		abuseErr  *github.AbuseRateLimitError
		status    int
		body      string
		converted bool
	)
	switch {
	case errors.As(err, &errResp):
		status, body, converted = statusOf(errResp.Response), errResp.Message, true
	case errors.As(err, &rateErr):
		status, body, converted = statusOf(rateErr.Response), rateErr.Message, true
	case errors.As(err, &abuseErr):
		status, body, converted = statusOf(abuseErr.Response), abuseErr.Message, true
	}
	if !converted {
		return err
	}
	return &RemoteError{Status: status, Body: body}
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
