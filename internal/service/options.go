package service

import (
	"context"
	"time"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/validator"
)

type options struct {
	now      func() time.Time
	indexer  domain.EmployeeIndexer
	recorder domain.ChangeRecorder
}

// Option configures a service.
type Option func(*options)

// WithClock overrides the time source used for ages and date validation.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIndexer mirrors employee writes into a search index.
func WithIndexer(idx domain.EmployeeIndexer) Option {
	return func(o *options) { o.indexer = idx }
}

// WithRecorder appends every write to a change log.
func WithRecorder(rec domain.ChangeRecorder) Option {
	return func(o *options) { o.recorder = rec }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) validator() *validator.Validator {
	return validator.New(o.now)
}

// record appends a change log entry. Failures are logged and dropped.
func (o options) record(ctx context.Context, entity, key string, action domain.ChangeAction) {
	if o.recorder == nil {
		return
	}
	rec := domain.ChangeRecord{
		Entity:    entity,
		Key:       key,
		Action:    action,
		Principal: domain.PrincipalFrom(ctx),
		At:        o.now().UTC(),
	}
	if err := o.recorder.RecordChange(ctx, rec); err != nil {
		logger.WarnLog(ctx, "Failed to record %s %s of %s: %v", entity, action, key, err)
	}
}
