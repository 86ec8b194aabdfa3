package chat

import "time"

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one message within a chat, tagged with its author role.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRecord is the single persisted row per chat. History is the whole turn
// sequence serialized as one JSON blob: histories are read and written
// wholesale, never queried by turn, so per-turn rows would buy nothing.
type ChatRecord struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	Name      *string `gorm:"type:text"`
	History   string  `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ChatRecord) TableName() string { return "chats" }

// Summary is what the chat list shows; it deliberately omits History so a
// long conversation never gets loaded just to draw the sidebar.
type Summary struct {
	ID        string    `json:"id"`
	Name      *string   `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}
