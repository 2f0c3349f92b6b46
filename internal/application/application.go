// Package application holds the use cases of the bookshop. Transports depend on
// UseCase rather than on concrete use case types.
package application

import "context"

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

// UseCaseFunc adapts a plain function to UseCase.
type UseCaseFunc[C any, R any] func(ctx context.Context, cmd C) (R, error)

func (f UseCaseFunc[C, R]) Execute(ctx context.Context, cmd C) (R, error) { return f(ctx, cmd) }
