package repo

import (
	"context"
	"time"

	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/metrics"
)

// WriteObserver reports write outcomes for one entity to metrics and logs.
type WriteObserver struct {
	entity  string
	logg    *logger.Logger
	metrics *metrics.WriteMetrics
}

// NewWriteObserver binds an observer to entity. Both logg and m may be nil.
func NewWriteObserver(entity string, logg *logger.Logger, m *metrics.WriteMetrics) WriteObserver {
	if logg == nil {
		logg = logger.Nop()
	}
	return WriteObserver{entity: entity, logg: logg, metrics: m}
}

// Done records the write that started at start and returns err unchanged.
// Failed writes are logged at warn with their error code.
func (o WriteObserver) Done(ctx context.Context, op string, start time.Time, err error) error {
	return o.DoneID(ctx, op, 0, start, err)
}

// DoneID is Done for a write aimed at one known row; the row id is logged as
// entity_id.
func (o WriteObserver) DoneID(ctx context.Context, op string, id int64, start time.Time, err error) error {
	o.metrics.Observe(o.entity, op, err, time.Since(start))
	if err == nil {
		return nil
	}
	if id > 0 {
		ctx = o.logg.WithEntity(ctx, o.entity, id)
	} else {
		ctx = o.logg.WithField(ctx, "entity", o.entity)
	}
	ctx = o.logg.WithFields(ctx, map[string]any{
		"op":    op,
		"code":  string(pkgerrors.CodeOf(err)),
		"error": err.Error(),
	})
	o.logg.Warn(ctx, "marketplace write rejected")
	return err
}
