package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"slidecraft/internal/model"
)

const (
	saveDebounceDelay = time.Second
	defaultName       = "Untitled presentation"
)

// ErrSessionNotFound 会话不存在
var ErrSessionNotFound = errors.New("session not found")

// Repository 会话持久化接口（由 SQLite store 实现）
type Repository interface {
	SaveSession(rec model.SessionRecord) error
	LoadSessions() ([]model.SessionRecord, error)
	DeleteSession(id string) error
}

// Manager 会话管理器：负责创建/查找/删除会话，以及防抖自动保存
type Manager struct {
	repo   Repository
	logger zerolog.Logger
	delay  time.Duration

	// saveMu 串行化落盘与删除，避免已删除的会话被写回
	saveMu sync.Mutex

	mu        sync.Mutex
	sessions  map[string]*Session
	dirty     map[string]struct{}
	saveTimer *time.Timer
	closed    bool
}

// NewManager 创建会话管理器并加载已持久化的会话；repo 为 nil 时仅保存在内存
func NewManager(repo Repository, logger zerolog.Logger) (*Manager, error) {
	m := &Manager{
		repo:     repo,
		logger:   logger,
		delay:    saveDebounceDelay,
		sessions: make(map[string]*Session),
		dirty:    make(map[string]struct{}),
	}

	if repo == nil {
		return m, nil
	}

	records, err := repo.LoadSessions()
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	for _, rec := range records {
		s := sessionFromRecord(rec)
		s.onChange = m.ScheduleSave
		m.sessions[s.id] = s
	}
	logger.Info().Int("count", len(records)).Msg("sessions loaded")
	return m, nil
}

// Create 创建新会话
func (m *Manager) Create(name string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}

	s := newSession(fmt.Sprintf("s_%s", uuid.New().String()[:8]), name, time.Now().UTC())
	s.onChange = m.ScheduleSave

	if m.repo != nil {
		if err := m.repo.SaveSession(s.Record()); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info().Str("session", s.id).Str("name", name).Msg("session created")
	return s, nil
}

// Get 按 ID 获取会话
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// List 会话概要列表，最近修改的在前
func (m *Manager) List() []Summary {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	out := make([]Summary, 0, len(all))
	for _, s := range all {
		out = append(out, s.Summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Delete 删除会话
func (m *Manager) Delete(id string) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		delete(m.dirty, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.mu.Lock()
	s.onChange = nil
	s.mu.Unlock()

	if m.repo != nil {
		if err := m.repo.DeleteSession(id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	m.logger.Info().Str("session", id).Msg("session deleted")
	return nil
}

// ScheduleSave 标记会话已修改，并在防抖延迟后统一保存
func (m *Manager) ScheduleSave(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.repo == nil || m.closed {
		return
	}
	m.dirty[id] = struct{}{}

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(m.delay, func() {
		if err := m.SaveNow(); err != nil {
			m.logger.Error().Err(err).Msg("autosave failed")
		}
	})
}

// SaveNow 立即保存所有已修改的会话
func (m *Manager) SaveNow() error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.Lock()
	pending := make([]*Session, 0, len(m.dirty))
	for id := range m.dirty {
		if s, ok := m.sessions[id]; ok {
			pending = append(pending, s)
		}
	}
	m.dirty = make(map[string]struct{})
	m.mu.Unlock()

	if m.repo == nil {
		return nil
	}

	var errs []error
	for _, s := range pending {
		if err := m.repo.SaveSession(s.Record()); err != nil {
			errs = append(errs, fmt.Errorf("save session %s: %w", s.id, err))
			m.mu.Lock()
			m.dirty[s.id] = struct{}{}
			m.mu.Unlock()
		}
	}
	return errors.Join(errs...)
}

// Close 停止自动保存并落盘
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	m.mu.Unlock()
	return m.SaveNow()
}
