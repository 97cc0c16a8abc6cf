package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned for every credential mismatch. It never
	// says which half of the pair was wrong.
	ErrAccessDenied = errors.New("access denied")

	// ErrExpiredToken is returned for operations on an invalidated token.
	ErrExpiredToken = errors.New("token expired")

	ErrInvalidCallback   = errors.New("invalid callback")
	ErrTokenNotFound     = errors.New("token not found")
	ErrAlreadyAuthorized = errors.New("token already authorized")

	ErrClientNotFound = errors.New("client not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateUser  = errors.New("display name already taken")
	ErrInvalidRequest = errors.New("invalid request")

	// ErrStorageFailure wraps every persistence error surfaced to callers.
	ErrStorageFailure = errors.New("storage failure")
)

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

// classify passes service sentinels through and wraps anything else as a
// storage failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrAccessDenied, ErrExpiredToken, ErrInvalidCallback, ErrTokenNotFound,
		ErrAlreadyAuthorized, ErrClientNotFound, ErrUserNotFound, ErrDuplicateUser,
		ErrInvalidRequest, ErrStorageFailure,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return storageError(op, err)
}

func isStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}
