package domain

import (
	"fmt"
	"strings"
)

func ValidateMessage(v string) (string, error) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return "", fmt.Errorf("%w: message cannot be empty", ErrInvalidInput)
	}
	return trimmed, nil
}

func ValidateAuthor(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	return nil
}

func ValidateSessionID(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	}
	return nil
}

func ValidatePostID(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: postId is required", ErrInvalidInput)
	}
	return nil
}

func ValidateVoteDirection(v VoteDirection) error {
	if !v.Valid() {
		return fmt.Errorf("%w: vote direction must be like or dislike", ErrInvalidInput)
	}
	return nil
}

func ValidateCommentText(v string) (string, error) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return "", fmt.Errorf("%w: comment cannot be empty", ErrInvalidInput)
	}
	return trimmed, nil
}

// ValidateCounts guards the wholesale count overwrite on edit. Callers of the
// edit path are trusted to keep counts consistent with the vote sets, but a
// negative counter is never a valid document state.
func ValidateCounts(likes, dislikes *int) error {
	if likes != nil && *likes < 0 {
		return fmt.Errorf("%w: likes cannot be negative", ErrInvalidInput)
	}
	if dislikes != nil && *dislikes < 0 {
		return fmt.Errorf("%w: dislikes cannot be negative", ErrInvalidInput)
	}
	return nil
}
