// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio. Los fallos de fetch (transient/permanent) viven en
// platform/errors porque los comparten adapters y usecases.
var (
	ErrEmptyTopic         = errors.New("topic cannot be empty")
	ErrEmptySourceName    = errors.New("source name cannot be empty")
	ErrInvalidTier        = errors.New("invalid tier")
	ErrInvalidQueryKind   = errors.New("invalid query kind")
	ErrInvalidSourceSpec  = errors.New("invalid source spec")
	ErrNoSourcesAvailable = errors.New("no sources available")
	ErrInvalidTargetTotal = errors.New("target total must be positive")
)
