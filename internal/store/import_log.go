package store

import (
	"fmt"
	"time"
)

// ImportLog 工作簿导入日志
type ImportLog struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"sessionId"`
	Filename     string    `json:"filename"`
	FileSize     int64     `json:"fileSize"`
	Mode         string    `json:"mode"` // append / replace
	Products     int       `json:"products"`
	Pipeline     int       `json:"pipeline"`
	SkippedRows  int       `json:"skippedRows"`
	Status       string    `json:"status"` // success / failed
	ErrorMessage string    `json:"errorMessage"`
	CreatedAt    time.Time `json:"createdAt"`
}

// 导入状态
const (
	ImportStatusSuccess = "success"
	ImportStatusFailed  = "failed"
)

// CreateImportLog 写入导入日志，返回 id
func (s *Store) CreateImportLog(log ImportLog) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (session_id, filename, file_size, mode, products, pipeline, skipped_rows, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.SessionID, log.Filename, log.FileSize, log.Mode, log.Products, log.Pipeline, log.SkippedRows, log.Status, log.ErrorMessage)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// ListImportLogs 查询会话的导入日志（最新在前）
func (s *Store) ListImportLogs(sessionID string, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, session_id, filename, file_size, mode, products, pipeline, skipped_rows, status, error_message, created_at
		FROM import_logs
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	logs := []ImportLog{}
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Filename, &l.FileSize, &l.Mode, &l.Products,
			&l.Pipeline, &l.SkippedRows, &l.Status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
