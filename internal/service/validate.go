package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mediaforge/api/internal/engine"
)

// Validation failures a caller can fix by resubmitting a corrected
// descriptor.
var (
	ErrEmptyDescriptor     = errors.New("descriptor cannot be empty")
	ErrMalformedDescriptor = errors.New("descriptor must contain at least one element connection (!)")
)

// EngineRejectedError means the execution engine's parser refused the
// descriptor. Detail is the engine diagnostic, verbatim.
type EngineRejectedError struct {
	Detail string
}

func (e *EngineRejectedError) Error() string {
	return fmt.Sprintf("invalid descriptor syntax: %s", e.Detail)
}

// ValidateDescriptor gates a descriptor before it may enter the registry.
// The connection-token check is a cheap structural pre-check; deep
// validation is the engine parser's job.
func ValidateDescriptor(eng engine.Engine, descriptor string) error {
	if strings.TrimSpace(descriptor) == "" {
		return ErrEmptyDescriptor
	}
	if !strings.Contains(descriptor, "!") {
		return ErrMalformedDescriptor
	}
	if _, err := eng.Parse(descriptor); err != nil {
		return &EngineRejectedError{Detail: err.Error()}
	}
	return nil
}
