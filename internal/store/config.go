package store

import (
	"database/sql"
	"fmt"
)

const keyLastActiveSession = "last_active_session"

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("config key not found: %s", key)
		}
		return "", err
	}
	return value, nil
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// GetLastActiveSession 最近打开的会话 ID（不存在时返回空串）
func (s *Store) GetLastActiveSession() string {
	v, err := s.GetConfig(keyLastActiveSession)
	if err != nil {
		return ""
	}
	return v
}

// SetLastActiveSession 记录最近打开的会话
func (s *Store) SetLastActiveSession(id string) error {
	return s.SetConfig(keyLastActiveSession, id)
}
