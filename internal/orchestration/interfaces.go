//go:generate mockgen -source=interfaces.go -destination=mocks/mock_handler.go -package=mocks

package orchestration

import (
	"context"
)

// TaskOptions carries the string-keyed configuration attached to a unit of
// work. The use-case tag and the join mode travel here.
type TaskOptions map[string]string

// Clone returns an independent copy of the options.
func (o TaskOptions) Clone() TaskOptions {
	c := make(TaskOptions, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// TaskSpec describes a unit of work submitted to the platform.
type TaskSpec struct {
	// Payload is the opaque input handed to the unit at invocation.
	Payload []byte
	// Options holds the unit's configuration, including the use-case tag.
	Options TaskOptions
	// ExpectedOutputs lists the result IDs the unit must fill before it
	// completes successfully.
	ExpectedOutputs []string
	// DataDependencies lists the result IDs that must exist before the
	// platform starts the unit.
	DataDependencies []string
}

// TaskHandler is the view of the execution platform a unit of work gets while
// it runs. The platform guarantees that every DataDependencies ID is already
// materialized when the unit is invoked.
type TaskHandler interface {
	// SessionID identifies the session the unit belongs to.
	SessionID() string
	// TaskID identifies the running unit.
	TaskID() string
	// Payload returns the unit's input bytes.
	Payload() []byte
	// Options returns the unit's configuration.
	Options() TaskOptions
	// ExpectedResults returns the output slots the unit must fill.
	ExpectedResults() []string
	// DataDependencies returns the materialized dependency payloads keyed by
	// result ID.
	DataDependencies() map[string][]byte
	// CreateResultIDs reserves one fresh result ID per name.
	CreateResultIDs(ctx context.Context, names []string) ([]string, error)
	// SubmitTasks queues new units. The call returns once the platform has
	// accepted them; it does not wait for them to run.
	SubmitTasks(ctx context.Context, specs []TaskSpec) error
	// SendResult writes data to one of the unit's declared output slots.
	SendResult(ctx context.Context, resultID string, data []byte) error
}

// OutputError is the failure detail of a unit.
type OutputError struct {
	Details string
}

// Output is the terminal state of a unit: Ok when Error is nil.
type Output struct {
	Error *OutputError
}

// Ok returns the successful outcome.
func Ok() Output { return Output{} }

// Fail returns the failed outcome carrying err's message.
func Fail(err error) Output {
	if err == nil {
		return Output{Error: &OutputError{Details: "unknown error"}}
	}
	return Output{Error: &OutputError{Details: err.Error()}}
}

// IsOk reports whether the unit completed successfully.
func (o Output) IsOk() bool { return o.Error == nil }
