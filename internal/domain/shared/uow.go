package shared

import "context"

// UnitOfWork runs a function inside one atomic transaction scope.
// Every repository call made with the context passed to fn joins the same
// transaction; fn returning an error rolls everything back, nil commits.
// Acquisition and release are guaranteed on every exit path, including panics.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
