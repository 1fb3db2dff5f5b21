package typesystem

import "fmt"

// NarrowingError reports a request for a variant-specific view of a value of
// another variant. It signals a bug in the analyzer, not in analyzed code.
type NarrowingError struct {
	Want Tag
	Got  Type
}

func (e *NarrowingError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("internal: expected %s, got no type", e.Want)
	}
	return fmt.Sprintf("internal: expected %s, got %s (%s)", e.Want, e.Got.Tag(), e.Got)
}

func NewNarrowingError(want Tag, got Type) *NarrowingError {
	return &NarrowingError{Want: want, Got: got}
}

// MustClass narrows t to a Class and panics with a NarrowingError otherwise.
func MustClass(t Type) *Class {
	if c, ok := t.(*Class); ok {
		return c
	}
	panic(NewNarrowingError(TagClass, t))
}

// MustModule narrows t to a Module and panics with a NarrowingError otherwise.
func MustModule(t Type) *Module {
	if m, ok := t.(*Module); ok {
		return m
	}
	panic(NewNarrowingError(TagModule, t))
}
