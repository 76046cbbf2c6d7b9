package kvstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ShannonCanTech/aroundhere/internal/kv"
	"github.com/ShannonCanTech/aroundhere/internal/models"
)

// ConsentStore keeps terms acceptance under the hash user:<id>:consent.
type ConsentStore struct {
	store kv.Store
}

func NewConsentStore(store kv.Store) *ConsentStore {
	return &ConsentStore{store: store}
}

func consentKey(userID string) string {
	return "user:" + userID + ":consent"
}

func (s *ConsentStore) Set(ctx context.Context, userID string, consent *models.Consent) error {
	err := s.store.HSet(ctx, consentKey(userID), map[string]string{
		"accepted":     strconv.FormatBool(consent.Accepted),
		"timestamp":    strconv.FormatInt(consent.Timestamp, 10),
		"termsVersion": consent.TermsVersion,
	})
	if err != nil {
		return fmt.Errorf("store consent for user %s: %w", userID, err)
	}
	return nil
}

func (s *ConsentStore) Get(ctx context.Context, userID string) (*models.Consent, error) {
	data, err := s.store.HGetAll(ctx, consentKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read consent for user %s: %w", userID, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	consent := &models.Consent{
		Accepted:     data["accepted"] == "true",
		TermsVersion: data["termsVersion"],
	}
	consent.Timestamp, _ = strconv.ParseInt(data["timestamp"], 10, 64)
	return consent, nil
}
