package model

import "time"

// SessionRecord 会话持久化记录
type SessionRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	State     SessionSnapshot `json:"state"`
}
