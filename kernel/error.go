package kernel

// Error describes a kernel error. All kernel errors are declared as
// package-level *Error values.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
