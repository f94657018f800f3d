package quillpress

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = sql.ErrNoRows

	// ErrNotAuthorized is returned by mutations attempted without a user.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrAuthFailed is returned by Authenticate on a password mismatch.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotPublished is returned by NextArticle for drafts.
	ErrNotPublished = errors.New("article has no published date")

	// ErrInvalidPage is returned by SavePage when the payload is not JSON.
	ErrInvalidPage = errors.New("page data is not valid JSON")

	errBadInput = errors.New("invalid input")
)
