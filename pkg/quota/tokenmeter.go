package quota

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetward/quotakit/pkg/usage"
)

// Extractor is the language-model client used by document extraction. It
// returns the extracted text plus the token count reported by the provider
// for the call.
type Extractor interface {
	Extract(ctx context.Context, document []byte) (text string, tokensUsed int64, err error)
}

// TokenMeter couples an Extractor with token-usage accounting. It is
// constructed explicitly and injected where extraction happens: there is no
// package-level client, and a missing client is an explicit Unavailable
// capability rather than a silent nil.
type TokenMeter struct {
	svc    *Service
	client Extractor
}

// NewTokenMeter wraps the given extractor. A nil client is permitted and
// yields a meter whose calls fail with ErrTokenMeterUnavailable, so callers
// can construct the meter unconditionally and branch on Available.
func NewTokenMeter(svc *Service, client Extractor) *TokenMeter {
	if svc == nil {
		panic("quota: Service is required")
	}
	return &TokenMeter{svc: svc, client: client}
}

// Available reports whether extraction is usable.
func (m *TokenMeter) Available() bool {
	return m.client != nil
}

// Extract runs the extractor and meters the tokens it consumed under the
// tenant's monthly token limit. The decision reflects whether the usage was
// admitted; callers over limit should surface the denial and stop
// extracting for the period.
func (m *TokenMeter) Extract(ctx context.Context, tenantID uuid.UUID, document []byte) (string, Decision, error) {
	if m.client == nil {
		return "", Decision{}, ErrTokenMeterUnavailable
	}

	text, tokens, err := m.client.Extract(ctx, document)
	if err != nil {
		return "", Decision{}, err
	}

	decision, err := m.svc.CheckAndLog(ctx, tenantID, FeatureTokenUsage, usage.Delta{Tokens: tokens})
	if err != nil {
		return "", Decision{}, err
	}
	return text, decision, nil
}

// Record meters an externally obtained token count without running
// extraction, for callers that talk to the provider directly.
func (m *TokenMeter) Record(ctx context.Context, tenantID uuid.UUID, tokens int64) (Decision, error) {
	return m.svc.CheckAndLog(ctx, tenantID, FeatureTokenUsage, usage.Delta{Tokens: tokens})
}
