package services

import "errors"

// Catalog misses are fatal to the single request: no partial writes happen.
// Store failures surface as wrapped gorm errors; callers may retry the whole
// operation because the completion claim makes retries idempotent.
var (
	ErrMissionNotFound = errors.New("mission not found in catalog")
	ErrTaskNotFound    = errors.New("task not found in catalog")
	ErrUserNotFound    = errors.New("user not found")
)
