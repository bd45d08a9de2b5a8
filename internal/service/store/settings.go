package store

import (
	"sync"

	"slidecraft/internal/model"
)

// SettingsStore 项目设置存储
type SettingsStore struct {
	settings model.ProjectSettings
	mu       sync.RWMutex
}

// NewSettingsStore 创建项目设置存储（默认值）
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{settings: model.DefaultProjectSettings()}
}

// Snapshot 获取当前设置（值拷贝）
func (s *SettingsStore) Snapshot() model.ProjectSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update 浅合并部分更新，返回合并后的设置
func (s *SettingsStore) Update(patch model.ProjectPatch) model.ProjectSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.Apply(patch)
	return s.settings
}

// Replace 整体替换（用于恢复快照）
func (s *SettingsStore) Replace(settings model.ProjectSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Reset 恢复默认设置
func (s *SettingsStore) Reset() {
	s.Replace(model.DefaultProjectSettings())
}
