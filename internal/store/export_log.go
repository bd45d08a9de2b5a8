package store

import (
	"fmt"
	"time"
)

// ExportLog 导出日志
type ExportLog struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"sessionId"`
	Sink         string    `json:"sink"`   // file / remote
	Format       string    `json:"format"` // pptx / pdf / xlsx
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	SlideCount   int       `json:"slideCount"`
	Status       string    `json:"status"` // success / failed
	ErrorMessage string    `json:"errorMessage"`
	CreatedAt    time.Time `json:"createdAt"`
}

// 导出状态
const (
	ExportStatusSuccess = "success"
	ExportStatusFailed  = "failed"
)

// CreateExportLog 写入导出日志，返回 id
func (s *Store) CreateExportLog(log ExportLog) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO export_logs (session_id, sink, format, file_name, file_size, slide_count, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, log.SessionID, log.Sink, log.Format, log.FileName, log.FileSize, log.SlideCount, log.Status, log.ErrorMessage)
	if err != nil {
		return 0, fmt.Errorf("failed to create export log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get export log id: %w", err)
	}
	return id, nil
}

// ListExportLogs 查询会话的导出日志（最新在前）
func (s *Store) ListExportLogs(sessionID string, limit int) ([]ExportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, session_id, sink, format, file_name, file_size, slide_count, status, error_message, created_at
		FROM export_logs
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query export logs: %w", err)
	}
	defer rows.Close()

	logs := []ExportLog{}
	for rows.Next() {
		var l ExportLog
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Sink, &l.Format, &l.FileName, &l.FileSize,
			&l.SlideCount, &l.Status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
