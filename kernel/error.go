package kernel

// Error describes an unrecoverable error raised by a kernel subsystem. All
// kernel errors must be defined as global variables that are pointers to the
// Error structure. This requirement stems from the fact that the Go allocator
// is not available during early boot so we cannot use errors.New.
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
