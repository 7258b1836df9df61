package services

import "errors"

// Sentinel errors for the orchestration pipeline and HTTP boundary. Only the
// dependent generation step and persistence failures surface as a terminal
// project error; analyst, embedding, and fork provisioning failures are
// absorbed with a degraded-but-successful outcome.
var (
	ErrEmptyPrompt       = errors.New("user prompt must not be empty")
	ErrProjectNotFound   = errors.New("project not found")
	ErrStaleTransition   = errors.New("project status changed concurrently")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMalformedOutput   = errors.New("model returned malformed output")
)
