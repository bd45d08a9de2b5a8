package session

import (
	"sync"
	"time"

	"slidecraft/internal/model"
	"slidecraft/internal/service/store"
	"slidecraft/internal/service/wizard"
)

// Session 一次向导会话：持有项目设置、内容与导航器。
//
// 所有读写都在 mu 下完成，跨组件的操作（如 StartNew）对其他读者是原子的。
type Session struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	name      string
	updatedAt time.Time
	settings  *store.SettingsStore
	content   *store.ContentStore
	nav       *wizard.Navigator
	exporting bool

	onChange func(id string)
}

func newSession(id, name string, now time.Time) *Session {
	return &Session{
		id:        id,
		name:      name,
		createdAt: now,
		updatedAt: now,
		settings:  store.NewSettingsStore(),
		content:   store.NewContentStore(),
		nav:       wizard.NewNavigator(),
	}
}

func sessionFromRecord(rec model.SessionRecord) *Session {
	s := newSession(rec.ID, rec.Name, rec.CreatedAt)
	s.restoreLocked(rec.State)
	s.updatedAt = rec.UpdatedAt
	return s
}

// ID 会话 ID
func (s *Session) ID() string {
	return s.id
}

// Name 会话名称
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Rename 修改会话名称
func (s *Session) Rename(name string) {
	s.mutate(func() { s.name = name })
}

// Summary 会话概要
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.settings.Snapshot()
	return Summary{
		ID:            s.id,
		Name:          s.name,
		Title:         settings.Title,
		TemplateID:    settings.TemplateID,
		Step:          s.nav.Index(),
		StepName:      s.nav.Current().String(),
		ProductCount:  s.content.ProductCount(),
		PipelineCount: s.content.PipelineCount(),
		ShowPipeline:  s.content.ShowPipeline(),
		Exporting:     s.exporting,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

// mutate 在锁内执行修改，完成后（锁外）触发变更回调
func (s *Session) mutate(fn func()) {
	_ = s.mutateErr(func() error {
		fn()
		return nil
	})
}

func (s *Session) mutateErr(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.updatedAt = time.Now().UTC()
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook(s.id)
	}
	return nil
}

// ---- 项目设置 ----

// Project 当前项目设置
func (s *Session) Project() model.ProjectSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Snapshot()
}

// UpdateProject 浅合并更新项目设置
func (s *Session) UpdateProject(patch model.ProjectPatch) model.ProjectSettings {
	var out model.ProjectSettings
	s.mutate(func() { out = s.settings.Update(patch) })
	return out
}

// ---- 导航 ----

// Wizard 当前导航状态
func (s *Session) Wizard() wizard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.State()
}

// Next 前进一步
func (s *Session) Next() wizard.State {
	return s.navigate(func(n *wizard.Navigator) { n.Next() })
}

// Previous 后退一步
func (s *Session) Previous() wizard.State {
	return s.navigate(func(n *wizard.Navigator) { n.Previous() })
}

// GoTo 跳转到指定步骤（越界钳制）
func (s *Session) GoTo(index int) wizard.State {
	return s.navigate(func(n *wizard.Navigator) { n.GoTo(index) })
}

func (s *Session) navigate(fn func(n *wizard.Navigator)) wizard.State {
	var st wizard.State
	s.mutate(func() {
		fn(s.nav)
		st = s.nav.State()
	})
	return st
}

// StartNew "Create New Presentation"：导航回到第一步、清空内容、恢复默认项目设置。
// 三者在同一把锁内完成，外部观察不到部分重置的状态。
func (s *Session) StartNew() wizard.State {
	var st wizard.State
	s.mutate(func() {
		s.nav.Reset()
		s.content.Reset()
		s.settings.Reset()
		st = s.nav.State()
	})
	return st
}

// ---- 内容 ----

// Products 内容条目（深拷贝）
func (s *Session) Products() []model.ProductData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.Products()
}

// AppendProduct 追加内容条目，返回位置
func (s *Session) AppendProduct(p model.ProductData) int {
	var pos int
	s.mutate(func() { pos = s.content.AppendProduct(p) })
	return pos
}

// UpdateProduct 原位更新内容条目
func (s *Session) UpdateProduct(pos int, p model.ProductData) error {
	return s.mutateErr(func() error { return s.content.UpdateProduct(pos, p) })
}

// RemoveProduct 删除内容条目
func (s *Session) RemoveProduct(pos int) error {
	return s.mutateErr(func() error {
		_, err := s.content.RemoveProduct(pos)
		return err
	})
}

// MoveProduct 调整内容条目顺序
func (s *Session) MoveProduct(from, to int) error {
	return s.mutateErr(func() error { return s.content.MoveProduct(from, to) })
}

// Pipeline 规划条目（深拷贝）
func (s *Session) Pipeline() []model.SlideEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.Pipeline()
}

// AppendPipeline 追加规划条目，返回位置
func (s *Session) AppendPipeline(e model.SlideEntry) int {
	var pos int
	s.mutate(func() { pos = s.content.AppendPipeline(e) })
	return pos
}

// UpdatePipeline 原位更新规划条目
func (s *Session) UpdatePipeline(pos int, e model.SlideEntry) error {
	return s.mutateErr(func() error { return s.content.UpdatePipeline(pos, e) })
}

// RemovePipeline 删除规划条目
func (s *Session) RemovePipeline(pos int) error {
	return s.mutateErr(func() error {
		_, err := s.content.RemovePipeline(pos)
		return err
	})
}

// MovePipeline 调整规划条目顺序
func (s *Session) MovePipeline(from, to int) error {
	return s.mutateErr(func() error { return s.content.MovePipeline(from, to) })
}

// ShowPipeline 规划是否可见
func (s *Session) ShowPipeline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.ShowPipeline()
}

// SetShowPipeline 设置规划可见性
func (s *Session) SetShowPipeline(show bool) {
	s.mutate(func() { s.content.SetShowPipeline(show) })
}

// ImportContent 批量导入条目
func (s *Session) ImportContent(products []model.ProductData, pipeline []model.SlideEntry, mode ImportMode) {
	s.mutate(func() {
		show := s.content.ShowPipeline()
		if mode == ImportReplace {
			s.content.Restore(products, pipeline, show)
			return
		}
		s.content.Restore(
			append(s.content.Products(), products...),
			append(s.content.Pipeline(), pipeline...),
			show,
		)
	})
}

// ---- 快照 ----

// Snapshot 深拷贝当前状态；导出在任何挂起点之前调用它
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() model.SessionSnapshot {
	return model.SessionSnapshot{
		Settings:     s.settings.Snapshot(),
		Products:     s.content.Products(),
		Pipeline:     s.content.Pipeline(),
		ShowPipeline: s.content.ShowPipeline(),
		Step:         s.nav.Index(),
	}
}

// Restore 用快照整体替换当前状态
func (s *Session) Restore(snap model.SessionSnapshot) {
	s.mutate(func() { s.restoreLocked(snap) })
}

func (s *Session) restoreLocked(snap model.SessionSnapshot) {
	s.settings.Replace(snap.Settings)
	s.content.Restore(snap.Products, snap.Pipeline, snap.ShowPipeline)
	s.nav.GoTo(snap.Step)
}

// Record 生成持久化记录
func (s *Session) Record() model.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SessionRecord{
		ID:        s.id,
		Name:      s.name,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
		State:     s.snapshotLocked(),
	}
}

// ---- 导出占位 ----

// AcquireExport 占用导出槽位；同一会话同时只允许一个导出。
// ok 为 false 表示已有导出在进行中。
func (s *Session) AcquireExport() (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exporting {
		return nil, false
	}
	s.exporting = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.exporting = false
			s.mu.Unlock()
		})
	}, true
}
