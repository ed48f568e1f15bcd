package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/api/schemas"
	"github.com/xkilldash9x/trackrunner/internal/browser/stability"
)

// Submitter captures one identifier and returns the saved document name.
type Submitter interface {
	Submit(ctx context.Context, identifier string, seq int) (string, error)
}

// BatchProcessor feeds identifiers to a Submitter one at a time, in order,
// and keeps exactly one record per identifier.
type BatchProcessor struct {
	submitter Submitter
	pause     stability.Waiter
	logger    *zap.Logger

	records []schemas.ResultRecord
}

func NewBatchProcessor(submitter Submitter, pause stability.Waiter, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		submitter: submitter,
		pause:     pause,
		logger:    logger.Named("batch"),
	}
}

// Run attempts every identifier. It returns the captured document names and
// the identifiers that failed; a failure never stops the loop.
func (b *BatchProcessor) Run(ctx context.Context, identifiers []string) (captured, failed []string) {
	b.records = make([]schemas.ResultRecord, 0, len(identifiers))

	for i, id := range identifiers {
		seq := i + 1
		name, err := b.submit(ctx, id, seq)
		if err != nil {
			b.logger.Error("Identifier failed.", zap.String("identifier", id), zap.Int("seq", seq), zap.Error(err))
			b.records = append(b.records, schemas.ErrorRecord(id, err))
			failed = append(failed, id)
		} else {
			b.records = append(b.records, schemas.SuccessRecord(id, name))
			captured = append(captured, name)
		}

		if b.pause != nil {
			if err := b.pause.Settle(ctx); err != nil {
				b.logger.Debug("Inter-item delay cut short.", zap.Error(err))
			}
		}
	}
	return captured, failed
}

// submit converts a panic in the submitter into an error for that identifier.
func (b *BatchProcessor) submit(ctx context.Context, id string, seq int) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing identifier: %v", r)
		}
	}()
	return b.submitter.Submit(ctx, id, seq)
}

// Records returns a copy of the records from the last Run, in input order.
func (b *BatchProcessor) Records() []schemas.ResultRecord {
	out := make([]schemas.ResultRecord, len(b.records))
	copy(out, b.records)
	return out
}
