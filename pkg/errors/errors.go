package naebak_errors

import (
	"errors"
)

// Infrastructure errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

// Validation errors
var (
	ErrEmptyContent   = errors.New("message content cannot be empty")
	ErrContentTooLong = errors.New("message content exceeds 500 characters")
	ErrEmptySubject   = errors.New("conversation subject cannot be empty")
	ErrSubjectTooLong = errors.New("conversation subject exceeds 200 characters")
	ErrInvalidPhone   = errors.New("phone number must be 10 to 15 digits")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrInvalidReason  = errors.New("unknown report reason")
	ErrInvalidRole    = errors.New("unknown profile role")
)

// Authorization errors, rejected before any mutation
var (
	ErrNotParticipant      = errors.New("user is not a participant of this conversation")
	ErrNotCitizen          = errors.New("only the citizen may perform this action")
	ErrSelfMarkForbidden   = errors.New("sender cannot mark own message as read")
	ErrCannotReportSelf    = errors.New("cannot report your own message")
	ErrInvalidParticipants = errors.New("citizen and representative must be different users")
)

// State-conflict errors
var (
	ErrConversationClosed    = errors.New("conversation is closed")
	ErrAlreadyClosed         = errors.New("conversation is already closed")
	ErrConversationNotClosed = errors.New("conversation is not closed yet")
	ErrAlreadyReviewed       = errors.New("report has already been reviewed")
	ErrDuplicateReport       = errors.New("message already reported by this user")
	ErrInvalidReply          = errors.New("reply target belongs to a different conversation")
)

// Dependency errors; unavailable is retryable, unknown is terminal
var (
	ErrDirectoryUnavailable  = errors.New("representative directory is unavailable")
	ErrUnknownRepresentative = errors.New("representative does not exist in directory")
)
