package model

import "fmt"

// SchemaSyntaxError is raised when a schema spec or a content expression is
// malformed: an unknown node/group name, a mixed inline/block choice, a
// content expression whose DFA has a dead end, or a text type carrying
// attributes.
type SchemaSyntaxError struct {
	Message string
}

func (e *SchemaSyntaxError) Error() string { return e.Message }

func newSchemaSyntaxError(format string, args ...interface{}) error {
	return &SchemaSyntaxError{Message: fmt.Sprintf(format, args...)}
}

// SchemaValidityError is raised when a node or mark is created without a
// required attribute.
type SchemaValidityError struct {
	Message string
}

func (e *SchemaValidityError) Error() string { return e.Message }

func newSchemaValidityError(format string, args ...interface{}) error {
	return &SchemaValidityError{Message: fmt.Sprintf(format, args...)}
}

// OutOfRangeError is raised when a position or depth argument falls outside
// the bounds of the document or the resolved position's spine.
type OutOfRangeError struct {
	Message string
}

func (e *OutOfRangeError) Error() string { return e.Message }

func newOutOfRangeError(format string, args ...interface{}) error {
	return &OutOfRangeError{Message: fmt.Sprintf(format, args...)}
}

// ReplaceError is raised by the slice-splicing replace kernel: inconsistent
// open depths, content that is too deep for the insertion point, nodes that
// can't be joined, or a result that doesn't satisfy a type's content
// expression.
type ReplaceError struct {
	Message string
}

func (e *ReplaceError) Error() string { return e.Message }

func newReplaceError(format string, args ...interface{}) error {
	return &ReplaceError{Message: fmt.Sprintf(format, args...)}
}
