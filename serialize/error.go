package serialize

import erro "github.com/njones/sioengine/internal/errors"

const (
	ErrReadBinary     erro.String = "read binary value: %w"
	ErrBadPlaceholder erro.String = "placeholder %d has no attachment (%d received)"
)
