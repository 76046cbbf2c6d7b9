package models

// Chat is a conversation record. Timestamps are epoch milliseconds; they
// double as sort scores in the message and user-index sorted sets.
type Chat struct {
	ID            string   `json:"id"`
	CreatedAt     int64    `json:"createdAt"`
	CreatedBy     string   `json:"createdBy"`
	Participants  []string `json:"participants"`
	LastMessageAt int64    `json:"lastMessageAt"`
	Title         string   `json:"title,omitempty"`
}

// IsParticipant reports whether userID is on the chat's participant list.
func (c *Chat) IsParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a single authored message within a chat. Username is a snapshot
// captured at send time, not looked up on read. EditedAt stays nil until the
// first edit.
type Message struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Edited    bool   `json:"edited"`
	EditedAt  *int64 `json:"editedAt"`
}

// MessagePage is one page of a backward-in-time message listing.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"hasMore"`
}

// LastMessagePreview is the embedded preview on a chat list item.
type LastMessagePreview struct {
	Text      string `json:"text"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ChatListItem is a chat enriched for the chat-list view. UnreadCount is a
// placeholder; unread tracking is not implemented.
type ChatListItem struct {
	Chat
	LastMessage *LastMessagePreview `json:"lastMessage,omitempty"`
	UnreadCount int                 `json:"unreadCount"`
}

// Consent records a user's acceptance of the terms.
type Consent struct {
	Accepted     bool   `json:"accepted"`
	Timestamp    int64  `json:"timestamp"`
	TermsVersion string `json:"termsVersion"`
}
