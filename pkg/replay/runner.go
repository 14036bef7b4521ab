package replay

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/reb0und/sringbuf/pkg/ringbuf"
)

// Runner executes scripts.
type Runner struct {
	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r != nil && r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run replays s against a new buffer of s.Capacity slots. It returns an
// error if the script is invalid or ctx is done before the last operation;
// in the latter case the partial report is returned as well.
func (r *Runner) Run(ctx context.Context, s *Script) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("replay: run id: %w", err)
	}
	rep := &Report{
		ID:       id.String(),
		Name:     s.Name,
		Capacity: s.Capacity,
		Steps:    make([]Step, 0, len(s.Ops)),
	}
	log := r.logger().With("run", rep.ID, "script", s.Name)
	log.Debug("replay start", "capacity", s.Capacity, "ops", len(s.Ops))

	rb := ringbuf.New[any](s.Capacity)
	for i, op := range s.Ops {
		if err := ctx.Err(); err != nil {
			rep.Final = rb.State()
			return rep, fmt.Errorf("replay %q: op %d: %w", s.Name, i, err)
		}

		step := Step{Index: i, Op: op.Op}
		switch op.Op {
		case OpWrite:
			// The buffer drops unread values silently; look at the target
			// slot first so the report can show what was lost.
			before := rb.State()
			if prev := before.Slots[before.WriteIndex]; prev.Occupied {
				step.Evicted = true
				step.EvictedValue = prev.Value
				rep.Evictions++
			}
			rb.Write(op.Value)
			step.Value = op.Value

		case OpRead:
			v, ok := rb.Read()
			step.Got = v
			step.Empty = !ok
			if msg := checkRead(op, v, ok); msg != "" {
				rep.Failures = append(rep.Failures, Failure{Step: i, Message: msg})
				log.Warn("read mismatch", "index", i, "detail", msg)
			}
		}
		step.State = rb.State()
		rep.Steps = append(rep.Steps, step)

		log.Debug("step",
			"index", i,
			"op", op.Op,
			"evicted", step.Evicted,
			"state", step.State.String(),
		)
	}

	rep.Final = rb.State()
	if s.Expect != nil && !ringbuf.StateEqualFunc(*s.Expect, rep.Final, valuesEqual) {
		msg := fmt.Sprintf("final state %s, want %s", rep.Final, *s.Expect)
		rep.Failures = append(rep.Failures, Failure{Step: -1, Message: msg})
		log.Warn("final state mismatch", "got", rep.Final.String(), "want", s.Expect.String())
	}

	log.Info("replay done",
		"steps", len(rep.Steps),
		"evictions", rep.Evictions,
		"failures", len(rep.Failures),
	)
	return rep, nil
}

func checkRead(op Op, got any, ok bool) string {
	switch {
	case op.WantEmpty && ok:
		return fmt.Sprintf("read %v, want empty", got)
	case op.Want != nil && !ok:
		return fmt.Sprintf("read empty, want %v", op.Want)
	case op.Want != nil && !valuesEqual(got, op.Want):
		return fmt.Sprintf("read %v, want %v", got, op.Want)
	}
	return ""
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
