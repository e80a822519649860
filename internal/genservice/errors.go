package genservice

import "errors"

var (
	ErrEmptyResponse = errors.New("empty response from model")
	ErrInvalidDraft  = errors.New("draft is missing a title or content")

	ErrInvalidImageOption = errors.New("invalid image option")
)

// GenerationError reports a failed text generation. It is never retried.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Op + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
