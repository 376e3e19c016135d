package collectionutils

import "sync"

// SafeMap is a typed wrapper around sync.Map.
type SafeMap[K comparable, V any] struct {
	m sync.Map
}

func (s *SafeMap[K, V]) Store(key K, value V) {
	s.m.Store(key, value)
}

func (s *SafeMap[K, V]) Load(key K) (V, bool) {
	val, ok := s.m.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return val.(V), true
}

func (s *SafeMap[K, V]) Delete(key K) {
	s.m.Delete(key)
}

func (s *SafeMap[K, V]) Range(fn func(key K, value V) bool) {
	s.m.Range(func(key, value any) bool {
		return fn(key.(K), value.(V))
	})
}
