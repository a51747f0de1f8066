package action

import (
	"context"
)

// NoParameter stands in for the masked parameters of an argument-less call.
const NoParameter = "[No Parameter]"

// Bound is a handler with its call arguments applied, plus the metadata
// interceptors log with. MaskedParams is for logging only.
type Bound struct {
	ActionName   string
	MaskedParams string

	run func(ctx context.Context) error
}

// NewBound builds a Bound directly; interceptor tests use it with a fake body.
func NewBound(actionName, maskedParams string, run func(ctx context.Context) error) *Bound {
	return &Bound{ActionName: actionName, MaskedParams: maskedParams, run: run}
}

// Run invokes the wrapped handler with the bound arguments.
func (b *Bound) Run(ctx context.Context) error {
	return b.run(ctx)
}

// Interceptor implements one cross-cutting behavior. It decides whether and
// how often to call h.Run and what to do with the result.
type Interceptor func(ctx context.Context, h *Bound, owner Owner) error

// CreateDecorator turns an interceptor into a Decorator.
//
// Parameters are masked eagerly, when the call is made, so later mutation of
// the arguments cannot leak into logs.
func CreateDecorator(interceptor Interceptor) Decorator {
	return func(d *Descriptor) {
		d.Wrap(func(inner Handler) Handler {
			return func(ctx context.Context, args ...any) error {
				bound := &Bound{
					ActionName:   d.Name(),
					MaskedParams: maskParams(d.owner, args),
					run: func(ctx context.Context) error {
						return inner(ctx, args...)
					},
				}
				return interceptor(ctx, bound, d.owner)
			}
		})
	}
}

func maskParams(owner Owner, args []any) string {
	var masked string
	if owner != nil && owner.App() != nil {
		masked = owner.App().MaskParams(args...)
	}
	if masked == "" {
		return NoParameter
	}
	return masked
}
