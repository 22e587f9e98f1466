package appendix

import "fmt"

// DocumentWriteError means the final document could not be persisted.
// It is fatal and carries the attempted destination path.
type DocumentWriteError struct {
	Dest string
	Err  error
}

func (e *DocumentWriteError) Error() string {
	return fmt.Sprintf("could not write document to %s: %v", e.Dest, e.Err)
}

func (e *DocumentWriteError) Unwrap() error { return e.Err }
