package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/md-hub/md-hub/internal/querykey"
)

// DefaultCleanupInterval 控制底层存储清理扫描的默认周期。
const DefaultCleanupInterval = 5 * time.Minute

// Entry 表示一次缓存命中结果。FetchedAt 记录远端请求完成时刻，
// Invalidated 置位后条目仍可枚举，但任何 TTL 下都视为过期。
type Entry struct {
	Value       any
	FetchedAt   time.Time
	Invalidated bool
}

// Fresh 判断条目在给定过期窗口内是否仍然可直接复用。
func (e Entry) Fresh(ttl time.Duration, now time.Time) bool {
	if e.Invalidated {
		return false
	}
	return now.Before(e.FetchedAt.Add(ttl))
}

// Store 以 querykey 元组为键维护整个进程共享的查询缓存。
// 所有变更都持 mu 进行，前缀失效与屏障匹配采用线性扫描，
// 键的基数很低，无需更复杂的索引结构。
//
// barriers 记录每个失效前缀最近一次生效的时刻：回源写入时携带
// 请求发起时刻，凡是发起早于（含等于）匹配屏障的写入都落入
// Invalidated 态，确保“失效发生在回源途中”时旧数据不会以新鲜
// 条目复活。
type Store struct {
	mu       sync.Mutex
	entries  *gocache.Cache
	barriers map[string]time.Time
	now      func() time.Time
}

// NewStore 构建查询缓存。条目不设存储级过期（过期语义由绑定层的
// staleness 窗口决定），cleanupInterval 仅用于底层存储的例行清理。
func NewStore(cleanupInterval time.Duration) *Store {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &Store{
		entries:  gocache.New(gocache.NoExpiration, cleanupInterval),
		barriers: make(map[string]time.Time),
		now:      time.Now,
	}
}

// NewStoreWithClock 与 NewStore 相同，但允许注入时钟，供测试制造
// 确定性的 staleness 场景。
func NewStoreWithClock(cleanupInterval time.Duration, now func() time.Time) *Store {
	store := NewStore(cleanupInterval)
	if now != nil {
		store.now = now
	}
	return store
}

// Get 返回键对应的条目，可能已被标记失效，由调用方结合 TTL 判断。
func (s *Store) Get(key querykey.Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key.String())
}

func (s *Store) getLocked(flat string) (Entry, bool) {
	value, found := s.entries.Get(flat)
	if !found {
		return Entry{}, false
	}
	entry, ok := value.(Entry)
	if !ok {
		return Entry{}, false
	}
	return entry, true
}

// Set 写入写操作产生的权威结果，以当前时刻参与屏障判定。
func (s *Store) Set(key querykey.Key, value any) {
	s.SetFetched(key, value, s.now())
}

// SetFetched 写入一次回源结果。startedAt 为该次远端请求的发起时刻：
// 若期间出现了覆盖该键的失效或删除，条目以 Invalidated 态落库，
// 值可供本次调用方消费，但不会再被当作新鲜数据服务。
func (s *Store) SetFetched(key querykey.Key, value any, startedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries.Set(key.String(), Entry{
		Value:       value,
		FetchedAt:   s.now(),
		Invalidated: s.barrierSinceLocked(key, startedAt),
	}, gocache.NoExpiration)
}

// Invalidate 将单个条目标记为过期，但保留其值。
func (s *Store) Invalidate(key querykey.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flat := key.String()
	s.barriers[flat] = s.now()
	entry, found := s.getLocked(flat)
	if !found || entry.Invalidated {
		return
	}
	entry.Invalidated = true
	s.entries.Set(flat, entry, gocache.NoExpiration)
}

// InvalidatePrefix 失效 prefix 范围下的所有子键（含 prefix 自身），
// 同时落下屏障，拦截仍在途的回源写入。
func (s *Store) InvalidatePrefix(prefix querykey.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.barriers[prefix.String()] = s.now()
	for flat, item := range s.entries.Items() {
		entry, ok := item.Object.(Entry)
		if !ok || entry.Invalidated {
			continue
		}
		if !keyMatchesPrefix(flat, prefix) {
			continue
		}
		entry.Invalidated = true
		s.entries.Set(flat, entry, gocache.NoExpiration)
	}
}

// Remove 彻底删除条目，用于资源已不存在的场景。屏障同样落下：
// 在途回源带回的旧值只能以失效态落库，不会复活为新鲜条目。
func (s *Store) Remove(key querykey.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flat := key.String()
	s.barriers[flat] = s.now()
	s.entries.Delete(flat)
}

// Flush 清空全部条目与屏障。
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries.Flush()
	s.barriers = make(map[string]time.Time)
}

// Len 返回当前条目数量，便于测试与诊断输出。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.ItemCount()
}

// barrierSinceLocked 判断自 since 起是否出现过覆盖 key 的失效屏障。
// 相等时刻按命中处理：宁可多回源一次，也不服务可能过期的数据。
func (s *Store) barrierSinceLocked(key querykey.Key, since time.Time) bool {
	for flatPrefix, at := range s.barriers {
		if at.Before(since) {
			continue
		}
		if key.HasPrefix(querykey.Parse(flatPrefix)) {
			return true
		}
	}
	return false
}

// keyMatchesPrefix 还原扁平键后做逐段前缀比较，避免 "documents::list"
// 误匹配 "documents::listing" 之类的同前缀字符串。
func keyMatchesPrefix(flat string, prefix querykey.Key) bool {
	return querykey.Parse(flat).HasPrefix(prefix)
}
