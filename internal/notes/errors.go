package notes

import "fmt"

// Tag roles used in TagNotFoundError
const (
	RoleEnd   = "end"
	RoleStart = "start"
)

// TagNotFoundError is returned when a requested release tag does not exist.
// Callers may recover from it; the engine never does.
type TagNotFoundError struct {
	Tag  string
	Role string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("release tag %q (%s) not found", e.Tag, e.Role)
}

// CollaboratorError wraps a failure of the repository source.
// Op names the call that failed.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
