package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"slidecraft/internal/model"
)

// SaveSession 保存会话（存在则覆盖）
func (s *Store) SaveSession(rec model.SessionRecord) error {
	state, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (id, name, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, rec.ID, rec.Name, string(state), rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", rec.ID, err)
	}
	return nil
}

// GetSession 读取单个会话
func (s *Store) GetSession(id string) (*model.SessionRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, name, state, created_at, updated_at FROM sessions WHERE id = ?
	`, id)
	rec, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, err
	}
	return rec, nil
}

// LoadSessions 读取全部会话（按更新时间倒序）
func (s *Store) LoadSessions() ([]model.SessionRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, name, state, created_at, updated_at FROM sessions ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []model.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// DeleteSession 删除会话及其导出/导入日志
func (s *Store) DeleteSession(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM export_logs WHERE session_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete export logs: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM import_logs WHERE session_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete import logs: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*model.SessionRecord, error) {
	var rec model.SessionRecord
	var state string
	if err := row.Scan(&rec.ID, &rec.Name, &state, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &rec.State); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", rec.ID, err)
	}
	return &rec, nil
}
