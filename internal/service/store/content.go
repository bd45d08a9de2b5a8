package store

import (
	"sync"

	"slidecraft/internal/model"
)

// ContentStore 内容存储：内容条目与规划条目两个独立有序列表，以及规划可见性开关
type ContentStore struct {
	products     orderedList[model.ProductData]
	pipeline     orderedList[model.SlideEntry]
	showPipeline bool
	mu           sync.RWMutex
}

// NewContentStore 创建内容存储
func NewContentStore() *ContentStore {
	return &ContentStore{
		products: newOrderedList(model.ProductData.Clone),
		pipeline: newOrderedList(model.SlideEntry.Clone),
	}
}

// Products 获取全部内容条目（深拷贝）
func (s *ContentStore) Products() []model.ProductData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products.list()
}

// ProductCount 内容条目数量
func (s *ContentStore) ProductCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products.items)
}

// AppendProduct 追加内容条目，返回其位置
func (s *ContentStore) AppendProduct(p model.ProductData) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products.append(p)
}

// UpdateProduct 原位更新内容条目
func (s *ContentStore) UpdateProduct(pos int, p model.ProductData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products.update(pos, p)
}

// RemoveProduct 按位置删除内容条目
func (s *ContentStore) RemoveProduct(pos int) (model.ProductData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products.remove(pos)
}

// MoveProduct 调整内容条目顺序
func (s *ContentStore) MoveProduct(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products.move(from, to)
}

// Pipeline 获取全部规划条目（深拷贝）
func (s *ContentStore) Pipeline() []model.SlideEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipeline.list()
}

// PipelineCount 规划条目数量
func (s *ContentStore) PipelineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pipeline.items)
}

// AppendPipeline 追加规划条目，返回其位置
func (s *ContentStore) AppendPipeline(e model.SlideEntry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline.append(e)
}

// UpdatePipeline 原位更新规划条目
func (s *ContentStore) UpdatePipeline(pos int, e model.SlideEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline.update(pos, e)
}

// RemovePipeline 按位置删除规划条目
func (s *ContentStore) RemovePipeline(pos int) (model.SlideEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline.remove(pos)
}

// MovePipeline 调整规划条目顺序
func (s *ContentStore) MovePipeline(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline.move(from, to)
}

// ShowPipeline 规划条目是否参与预览/导出
func (s *ContentStore) ShowPipeline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showPipeline
}

// SetShowPipeline 设置规划可见性
func (s *ContentStore) SetShowPipeline(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showPipeline = show
}

// Restore 整体替换（用于恢复快照、批量导入）
func (s *ContentStore) Restore(products []model.ProductData, pipeline []model.SlideEntry, showPipeline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products.set(products)
	s.pipeline.set(pipeline)
	s.showPipeline = showPipeline
}

// Reset 清空两个列表并隐藏规划
func (s *ContentStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products.clear()
	s.pipeline.clear()
	s.showPipeline = false
}
