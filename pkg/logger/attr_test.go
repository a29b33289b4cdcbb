package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetward/quotakit/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.Attr{}, logger.Error(nil))

	a := logger.Error(errors.New("boom"))
	assert.Equal(t, "error", a.Key)
}

func TestErrors(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))

	a := logger.Errors(errors.New("one"), nil, errors.New("two"))
	assert.Equal(t, "errors", a.Key)
	assert.Len(t, a.Value.Group(), 2)
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		attr slog.Attr
		key  string
	}{
		{"plan id", logger.PlanID("pro"), "plan_id"},
		{"feature", logger.Feature("token_usage"), "feature"},
		{"limit", logger.Limit("monthly_token_limit"), "limit"},
		{"tenant id", logger.TenantID("t-1"), "tenant_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.key, tt.attr.Key)
		})
	}

	assert.Equal(t, slog.Attr{}, logger.PlanID(""))
	assert.Equal(t, slog.Attr{}, logger.Feature(""))
	assert.Equal(t, slog.Attr{}, logger.Limit(""))
	assert.Equal(t, slog.Attr{}, logger.TenantID(nil))
}

func TestGroup(t *testing.T) {
	t.Parallel()
	a := logger.Group("decision", slog.Bool("allowed", false), slog.String("limit", "storage_limit_mb"))
	assert.Equal(t, "decision", a.Key)
	assert.Len(t, a.Value.Group(), 2)
}
