package input

import "fmt"

// Reason classifies a rejected input path
type Reason string

const (
	ReasonNotPNG     Reason = "image is not PNG"
	ReasonMissing    Reason = "image does not exist"
	ReasonNotFile    Reason = "image is not a regular file"
	ReasonUnreadable Reason = "image cannot be accessed"
)

// ValidationError represents an input path that cannot be processed
type ValidationError struct {
	Path   string
	Reason Reason
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
