package tasks

import "errors"

// ErrTaskNotFound is returned when a task does not exist or lies outside the
// caller's visibility scope. The two cases are deliberately indistinguishable.
var ErrTaskNotFound = errors.New("task not found")
