package service

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ochan-dev/ochan/internal/domain"
	internal_errors "github.com/ochan-dev/ochan/internal/errors"
)

const (
	maxAuthorLength  = 100
	maxEmailLength   = 100
	maxSubjectLength = 200
)

// DraftValidator sanitizes and bounds author-supplied fields before a
// submission touches the database.
type DraftValidator struct {
	policy        *bluemonday.Policy
	maxBodyLength int
}

func NewDraftValidator(maxBodyLength int) *DraftValidator {
	return &DraftValidator{
		policy:        bluemonday.StrictPolicy(),
		maxBodyLength: maxBodyLength,
	}
}

func (v *DraftValidator) Draft(draft *domain.PostDraft) error {
	draft.Author = strings.TrimSpace(v.policy.Sanitize(draft.Author))
	draft.Email = strings.TrimSpace(v.policy.Sanitize(draft.Email))
	draft.Subject = strings.TrimSpace(v.policy.Sanitize(draft.Subject))
	draft.Body = strings.TrimRight(v.policy.Sanitize(draft.Body), " \t\n")

	if draft.Body == "" && len(draft.Files) == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Post body is required", StatusCode: 400}
	}
	if len(draft.Body) > v.maxBodyLength {
		return &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Post body exceeds %d characters", v.maxBodyLength),
			StatusCode: 400,
		}
	}
	if len(draft.Author) > maxAuthorLength {
		return &internal_errors.ErrorWithStatusCode{Message: "Name is too long", StatusCode: 400}
	}
	if len(draft.Email) > maxEmailLength {
		return &internal_errors.ErrorWithStatusCode{Message: "Email is too long", StatusCode: 400}
	}
	if len(draft.Subject) > maxSubjectLength {
		return &internal_errors.ErrorWithStatusCode{Message: "Subject is too long", StatusCode: 400}
	}
	return nil
}
