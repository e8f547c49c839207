package compiler

import (
	"errors"
	"fmt"
)

// ErrInvalidShape matches every *ShapeError.
var ErrInvalidShape = errors.New("invalid expression shape")

// Cast introspection failures. Only these two cause a cast to fall back to
// default compilation; every other error propagates.
var (
	ErrNoTypeDescriptor = errors.New("cast target has no type descriptor")
	ErrUnknownType      = errors.New("cast target type is not known to the dialect")
)

// ShapeError reports a node whose structure cannot be compiled, such as a
// JSON object with an odd number of arguments or a key test without keys.
type ShapeError struct {
	Kind   string // node kind, from core.Node.Kind
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidShape) match any shape error.
func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidShape
}

// UnsupportedNodeError is returned by the default compiler for node kinds
// it cannot render.
type UnsupportedNodeError struct {
	Kind string
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported node kind %q", e.Kind)
}
