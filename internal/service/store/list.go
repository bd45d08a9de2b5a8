package store

import (
	"errors"
	"fmt"
)

// ErrPositionOutOfRange 位置越界
var ErrPositionOutOfRange = errors.New("position out of range")

// orderedList 有序列表：插入顺序即展示/导出顺序，允许重复，按位置标识
type orderedList[T any] struct {
	items []T
	clone func(T) T
}

func newOrderedList[T any](clone func(T) T) orderedList[T] {
	return orderedList[T]{items: []T{}, clone: clone}
}

func (l *orderedList[T]) checkPos(pos int) error {
	if pos < 0 || pos >= len(l.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrPositionOutOfRange, pos, len(l.items))
	}
	return nil
}

func (l *orderedList[T]) append(v T) int {
	l.items = append(l.items, l.clone(v))
	return len(l.items) - 1
}

func (l *orderedList[T]) update(pos int, v T) error {
	if err := l.checkPos(pos); err != nil {
		return err
	}
	l.items[pos] = l.clone(v)
	return nil
}

func (l *orderedList[T]) remove(pos int) (T, error) {
	var zero T
	if err := l.checkPos(pos); err != nil {
		return zero, err
	}
	removed := l.items[pos]
	l.items = append(l.items[:pos], l.items[pos+1:]...)
	return removed, nil
}

// move 将 from 位置的条目移动到 to 位置，其余条目相对顺序不变
func (l *orderedList[T]) move(from, to int) error {
	if err := l.checkPos(from); err != nil {
		return err
	}
	if err := l.checkPos(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	v := l.items[from]
	l.items = append(l.items[:from], l.items[from+1:]...)
	l.items = append(l.items[:to], append([]T{v}, l.items[to:]...)...)
	return nil
}

func (l *orderedList[T]) list() []T {
	out := make([]T, len(l.items))
	for i, v := range l.items {
		out[i] = l.clone(v)
	}
	return out
}

func (l *orderedList[T]) set(items []T) {
	l.items = make([]T, len(items))
	for i, v := range items {
		l.items[i] = l.clone(v)
	}
}

func (l *orderedList[T]) clear() {
	l.items = []T{}
}
