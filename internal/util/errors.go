package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidStatus       = errors.New("invalid progress status")
	ErrNotStreakQualifying = errors.New("progress is not streak-qualifying")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)
