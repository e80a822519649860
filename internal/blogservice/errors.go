package blogservice

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrAccessRequired    = errors.New("premium subscription required")
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrUserForeignKey    = errors.New("user_id does not exist")
)

// InsufficientTokensError is returned when the balance cannot pay for a generation.
type InsufficientTokensError struct {
	Required  int
	Available int
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens: required %d, available %d", e.Required, e.Available)
}
