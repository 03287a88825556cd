package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// compensationTimeout bounds each compensation. Compensations run detached from the
// caller's context, which is often the one that just expired.
const compensationTimeout = 5 * time.Second

// Transaction runs steps in order and, when one fails, runs the compensations of the steps
// that already succeeded in reverse. It is how a use case spanning two repositories leaves
// no partial state behind.
type Transaction struct {
	steps []step
	log   *slog.Logger
}

type step struct {
	name       string
	fn         func(context.Context) error
	compensate func(context.Context) error
}

func NewTransaction(log *slog.Logger) *Transaction {
	if log == nil {
		log = slog.Default()
	}
	return &Transaction{log: log}
}

// AddOperation appends a step. compensate may be nil for steps with nothing to undo.
func (t *Transaction) AddOperation(name string, fn, compensate func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, fn: fn, compensate: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", s.name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) {
	ctx = context.WithoutCancel(ctx)
	for i := failedAt - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.compensate == nil {
			continue
		}
		if err := t.compensate(ctx, s); err != nil {
			t.log.Error("compensation failed, state may be inconsistent",
				slog.String("operation", s.name), slog.Any("error", err))
		}
	}
}

func (t *Transaction) compensate(ctx context.Context, s step) error {
	ctx, cancel := context.WithTimeout(ctx, compensationTimeout)
	defer cancel()
	return s.compensate(ctx)
}
