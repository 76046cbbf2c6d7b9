package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ShannonCanTech/aroundhere/internal/kv"
	"github.com/ShannonCanTech/aroundhere/internal/models"
)

func TestConsentStoreRoundtrip(t *testing.T) {
	store := NewConsentStore(kv.NewMemory())
	ctx := context.Background()

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, got)

	consent := &models.Consent{
		Accepted:     true,
		Timestamp:    time.Now().UnixMilli(),
		TermsVersion: "1.0",
	}
	require.NoError(t, store.Set(ctx, "u1", consent))

	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, consent, got)
}
