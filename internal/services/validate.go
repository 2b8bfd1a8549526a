package services

import (
	"strings"
	"unicode/utf8"

	naebak_errors "naebak-messaging/pkg/errors"
)

const (
	maxSubjectLength = 200
	maxContentLength = 500
)

func validateSubject(subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", naebak_errors.ErrEmptySubject
	}
	if utf8.RuneCountInString(subject) > maxSubjectLength {
		return "", naebak_errors.ErrSubjectTooLong
	}
	return subject, nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", naebak_errors.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", naebak_errors.ErrContentTooLong
	}
	return content, nil
}
