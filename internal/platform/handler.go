package platform

import (
	"context"
	"fmt"
	"slices"

	"github.com/agbru/basketmc/internal/orchestration"
)

// unitHandler is the orchestration.TaskHandler given to a running unit.
type unitHandler struct {
	session *Session
	task    *task
}

func (h *unitHandler) SessionID() string { return h.session.id }

func (h *unitHandler) TaskID() string { return h.task.id }

func (h *unitHandler) Payload() []byte { return h.task.spec.Payload }

func (h *unitHandler) Options() orchestration.TaskOptions { return h.task.spec.Options.Clone() }

func (h *unitHandler) ExpectedResults() []string { return slices.Clone(h.task.spec.ExpectedOutputs) }

func (h *unitHandler) DataDependencies() map[string][]byte {
	h.session.mu.Lock()
	defer h.session.mu.Unlock()
	deps := make(map[string][]byte, len(h.task.deps))
	for id, data := range h.task.deps {
		deps[id] = data
	}
	return deps
}

func (h *unitHandler) CreateResultIDs(ctx context.Context, names []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.session.CreateResultIDs(names), nil
}

// SubmitTasks validates specs immediately but only queues them when the
// submitting unit succeeds.
func (h *unitHandler) SubmitTasks(ctx context.Context, specs []orchestration.TaskSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, t := h.session, h.task
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.state != taskRunning {
		return fmt.Errorf("task %s is not running", t.id)
	}
	claimed, err := s.validate(t, specs)
	if err != nil {
		return err
	}
	if t.claims == nil {
		t.claims = make(map[string]struct{}, len(claimed))
	}
	for id := range claimed {
		t.claims[id] = struct{}{}
	}
	for _, spec := range specs {
		t.pending = append(t.pending, copySpec(spec))
	}
	return nil
}

// SendResult buffers data for one of the unit's own outputs. It becomes
// visible to dependents only when the unit succeeds.
func (h *unitHandler) SendResult(ctx context.Context, resultID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, t := h.session, h.task
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case t.state != taskRunning:
		return fmt.Errorf("task %s is not running", t.id)
	case !slices.Contains(t.spec.ExpectedOutputs, resultID):
		return fmt.Errorf("result %s is not an output of task %s", resultID, t.id)
	}
	if _, delegated := t.claims[resultID]; delegated {
		return fmt.Errorf("result %s was delegated to a submitted task", resultID)
	}
	if _, written := t.writes[resultID]; written {
		return fmt.Errorf("result %s was already written", resultID)
	}
	if t.writes == nil {
		t.writes = make(map[string][]byte)
	}
	t.writes[resultID] = append([]byte(nil), data...)
	return nil
}
