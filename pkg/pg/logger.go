package pg

import "context"

// logger is the subset of *slog.Logger needed to route migration output
// through application logging instead of stdout/stderr.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
