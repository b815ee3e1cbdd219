// Package parallel holds small concurrency helpers shared by the task
// platform.
package parallel

import "sync"

// ErrorCollector keeps the first non-nil error reported by concurrent units
// and counts every failure. The zero value is ready to use.
type ErrorCollector struct {
	mu    sync.Mutex
	err   error
	count int
}

// SetError records err. Only the first non-nil error is kept; nil is ignored.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
	c.count++
}

// Err returns the first recorded error, or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Count returns how many non-nil errors were reported.
func (c *ErrorCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
