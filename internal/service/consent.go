package service

import (
	"context"
	"time"

	"github.com/ShannonCanTech/aroundhere/internal/models"
	"github.com/ShannonCanTech/aroundhere/internal/repository"
)

// CurrentTermsVersion is bumped whenever the terms change.
const CurrentTermsVersion = "1.0"

// ConsentService tracks terms acceptance per user.
type ConsentService struct {
	consents repository.ConsentRepository
	now      func() time.Time
}

func NewConsentService(consents repository.ConsentRepository) *ConsentService {
	return &ConsentService{consents: consents, now: time.Now}
}

// Check returns the user's consent record, or nil if they never accepted.
func (s *ConsentService) Check(ctx context.Context, userID string) (*models.Consent, error) {
	return s.consents.Get(ctx, userID)
}

// Record stores acceptance of the given terms version, defaulting to the
// current one.
func (s *ConsentService) Record(ctx context.Context, userID, termsVersion string) (*models.Consent, error) {
	if termsVersion == "" {
		termsVersion = CurrentTermsVersion
	}
	consent := &models.Consent{
		Accepted:     true,
		Timestamp:    s.now().UnixMilli(),
		TermsVersion: termsVersion,
	}
	if err := s.consents.Set(ctx, userID, consent); err != nil {
		return nil, err
	}
	return consent, nil
}
