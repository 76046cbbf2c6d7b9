// Package avatar resolves user avatar URLs with a cache-aside strategy over
// the key-value store. Resolution order: icon cache (pushed by platform
// events), avatar cache, platform profile lookup, then a deterministic
// default derived from the username. Positive and default results are cached
// for an hour; the per-chat session fallback is cached without expiry so a
// user keeps one picture for the life of a chat.
package avatar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/kv"
)

const (
	cacheTTL       = time.Hour
	defaultAvatars = 8
	defaultURLFmt  = "https://www.redditstatic.com/avatars/defaults/v2/avatar_default_%d.png"
)

// ProfileClient looks up a user's custom avatar on the hosting platform.
// An empty URL with a nil error means the user has no custom avatar.
type ProfileClient interface {
	SnoovatarURL(ctx context.Context, username string) (string, error)
}

// Service implements avatar resolution. It satisfies service.AvatarResolver.
type Service struct {
	store    kv.Store
	profiles ProfileClient
	logger   *zap.Logger
}

func NewService(store kv.Store, profiles ProfileClient, logger *zap.Logger) *Service {
	return &Service{store: store, profiles: profiles, logger: logger}
}

// AvatarURL resolves the avatar for a username. Profile lookup failures are
// absorbed into the default avatar; only store failures surface as errors.
func (s *Service) AvatarURL(ctx context.Context, username string) (string, error) {
	iconKey := "icon:" + username
	cacheKey := "avatar:" + username

	// Icon pushed from platform events wins over everything.
	if icon, ok, err := s.store.Get(ctx, iconKey); err != nil {
		return "", err
	} else if ok {
		return icon, nil
	}

	if cached, ok, err := s.store.Get(ctx, cacheKey); err != nil {
		return "", err
	} else if ok {
		return cached, nil
	}

	url, err := s.profiles.SnoovatarURL(ctx, username)
	if err != nil {
		s.logger.Warn("profile lookup failed, using default avatar",
			zap.String("username", username),
			zap.Error(err),
		)
		url = ""
	}
	if url == "" {
		url = defaultFor(username)
	}

	if err := s.store.Set(ctx, cacheKey, url, cacheTTL); err != nil {
		return "", err
	}
	return url, nil
}

// ChatFallback returns a stable fallback avatar for a user within one chat.
// The first resolution is cached forever under the chat, so the assignment
// never flickers mid-session.
func (s *Service) ChatFallback(ctx context.Context, userID, chatID string) (string, error) {
	cacheKey := "chat:" + chatID + ":user:" + userID + ":fallback_avatar"

	if cached, ok, err := s.store.Get(ctx, cacheKey); err != nil {
		return "", err
	} else if ok {
		return cached, nil
	}

	url := defaultFor(userID)
	if err := s.store.Set(ctx, cacheKey, url, 0); err != nil {
		return "", err
	}
	return url, nil
}

// defaultFor picks one of the eight platform default avatars by summing the
// identifier's bytes, so the same user always maps to the same default.
func defaultFor(id string) string {
	sum := 0
	for _, c := range id {
		sum += int(c)
	}
	return fmt.Sprintf(defaultURLFmt, sum%defaultAvatars)
}
