package util

import (
	"io"
)

// CleanupTasks accumulates actions to undo a partially completed setup. A constructor adds a task for
// each resource it acquires, calls Run if a later step fails, and calls Clear once everything has
// succeeded and the resources belong to the constructed object.
type CleanupTasks []func()

// AddCloser adds a task that closes c, ignoring any error.
func (t *CleanupTasks) AddCloser(c io.Closer) {
	*t = append(*t, func() { _ = c.Close() })
}

// AddFunc adds a task.
func (t *CleanupTasks) AddFunc(f func()) {
	*t = append(*t, f)
}

// Clear discards all tasks without running them.
func (t *CleanupTasks) Clear() {
	*t = nil
}

// Run runs the tasks in reverse order of addition, then discards them.
func (t *CleanupTasks) Run() {
	for i := len(*t) - 1; i >= 0; i-- {
		(*t)[i]()
	}
	*t = nil
}
