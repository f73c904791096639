package models

import "errors"

// ErrNotFound indicates the referenced task does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a missing required field or a malformed value.
var ErrValidation = errors.New("validation failed")

// ErrCorruptRecord indicates a stored line could not be decoded into a task.
var ErrCorruptRecord = errors.New("corrupt record")
