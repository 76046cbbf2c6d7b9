package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDs are time-prefixed with a random suffix so they are unique without any
// coordination and sort roughly by creation time when read by humans.

func newChatID(now time.Time) string {
	return fmt.Sprintf("chat_%d_%s", now.UnixMilli(), idSuffix())
}

func newMessageID(now time.Time) string {
	return fmt.Sprintf("msg_%d_%s", now.UnixMilli(), idSuffix())
}

func idSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}
