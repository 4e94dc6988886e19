package jobo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// AutoApplyClient accesses the auto-apply endpoints
type AutoApplyClient struct {
	http *transport
}

// StartSession opens an auto-apply session for the apply URL of a job listing.
// The response lists the form fields to answer.
func (c *AutoApplyClient) StartSession(ctx context.Context, applyURL string) (*AutoApplySessionResponse, error) {
	if strings.TrimSpace(applyURL) == "" {
		return nil, fmt.Errorf("%w: apply URL is required", ErrInvalidOptions)
	}

	var resp AutoApplySessionResponse
	body := StartAutoApplySessionRequest{ApplyURL: applyURL}
	if err := c.http.post(ctx, "/api/auto-apply/start", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetAnswers submits field answers for an active session and returns the
// updated session state, including any validation errors.
func (c *AutoApplyClient) SetAnswers(ctx context.Context, sessionID string, answers []FieldAnswer) (*AutoApplySessionResponse, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session ID is required", ErrInvalidOptions)
	}
	if answers == nil {
		answers = []FieldAnswer{}
	}

	var resp AutoApplySessionResponse
	body := SetAutoApplyAnswersRequest{SessionID: sessionID, Answers: answers}
	if err := c.http.post(ctx, "/api/auto-apply/set-answers", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EndSession ends a session. It returns false without an error when the
// session no longer exists.
func (c *AutoApplyClient) EndSession(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, fmt.Errorf("%w: session ID is required", ErrInvalidOptions)
	}

	err := c.http.delete(ctx, "/api/auto-apply/sessions/"+url.PathEscape(sessionID))
	if err == nil {
		return true, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsNotFound() {
		return false, nil
	}
	return false, err
}
