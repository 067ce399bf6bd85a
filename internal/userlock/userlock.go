// Package userlock はユーザー単位の処理ロックを提供する。
//
// 文字起こし処理は同一ユーザーについて同時に1件しか実行できない。
// 待機はせず、取得できない場合は即座に拒否する。
package userlock

import "sync"

// Set はユーザーIDをキーとするロックの集合。
// 単一プロセス内でのみ有効。
type Set struct {
	mu     sync.Mutex
	locked map[string]struct{}
}

// NewSet はSetの新しいインスタンスを生成する。
func NewSet() *Set {
	return &Set{
		locked: make(map[string]struct{}),
	}
}

// TryAcquire はユーザーのロック取得を試みる。
// 取得できた場合は解放関数とtrueを返す。既に保持されている場合は待機せず
// nilとfalseを返す。
// 解放関数は複数回呼んでも安全（2回目以降は何もしない）。
func (s *Set) TryAcquire(userID string) (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.locked[userID]; held {
		return nil, false
	}
	s.locked[userID] = struct{}{}

	var once sync.Once
	release = func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locked, userID)
			s.mu.Unlock()
		})
	}
	return release, true
}

// Held はユーザーのロックが保持されているかを返す。テストおよびメトリクス用。
func (s *Set) Held(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, held := s.locked[userID]
	return held
}

// Count は現在保持されているロック数を返す。テストおよびメトリクス用。
func (s *Set) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locked)
}
