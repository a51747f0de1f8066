package interceptors

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/eventlog"
)

const instrumentationName = "github.com/jcmexdev/statesaga/internal/interceptors"

// TypePerformance is the event type PerformanceTrace logs.
const TypePerformance = "performance"

// PerformanceTrace measures the wall-clock duration of the handler. The
// measurement is reported three ways: a span named after the action, an
// "action.duration" histogram in seconds, and a "performance" event whose
// context carries the duration. It keeps its own clock, separate from the
// Log decorator's timer.
func PerformanceTrace() action.Decorator {
	// The global meter delegates to whichever provider is installed later.
	histogram, herr := otel.Meter(instrumentationName).Float64Histogram("action.duration",
		metric.WithDescription("Wall-clock duration of decorated action handlers."),
		metric.WithUnit("s"))

	return action.CreateDecorator(func(ctx context.Context, h *action.Bound, owner action.Owner) error {
		actionAttr := attribute.String("action", h.ActionName)

		ctx, span := otel.Tracer(instrumentationName).Start(ctx, h.ActionName,
			trace.WithAttributes(actionAttr, attribute.String("action.params", h.MaskedParams)))
		start := time.Now()

		err := h.Run(ctx)

		elapsed := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if herr == nil {
			histogram.Record(context.WithoutCancel(ctx), elapsed.Seconds(), metric.WithAttributes(actionAttr))
		}

		owner.App().Logger.Log(TypePerformance, map[string]string{
			"action":             h.ActionName,
			eventlog.KeyDuration: elapsed.String(),
		})
		return err
	})
}
