package cache

import (
	"context"
	"sync"

	"github.com/md-hub/md-hub/internal/querykey"
)

// FlightTable 记录按键去重的在途远端请求：同一键在任意时刻至多存在
// 一次真实网络调用，并发调用方共享同一次结果。条目在完成（无论成败）
// 后立即清除，下一次调用会重新发起请求。
type FlightTable struct {
	mu      sync.Mutex
	flights map[string]*flight
}

type flight struct {
	done  chan struct{}
	value any
	err   error
}

// NewFlightTable 创建空的在途请求表。
func NewFlightTable() *FlightTable {
	return &FlightTable{
		flights: make(map[string]*flight),
	}
}

// Do 以 key 去重执行 fn。首个调用方发起真实请求，其余调用方阻塞等待
// 同一结果；等待期间上下文取消时返回 ctx.Err()，在途请求本身不被中断
//（其结果仍会交付给尚在等待的其他调用方）。
func (t *FlightTable) Do(ctx context.Context, key querykey.Key, fn func() (any, error)) (any, error) {
	flat := key.String()

	t.mu.Lock()
	if existing, ok := t.flights[flat]; ok {
		t.mu.Unlock()
		select {
		case <-existing.done:
			return existing.value, existing.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	current := &flight{done: make(chan struct{})}
	t.flights[flat] = current
	t.mu.Unlock()

	current.value, current.err = fn()

	t.mu.Lock()
	delete(t.flights, flat)
	t.mu.Unlock()
	close(current.done)

	return current.value, current.err
}

// Inflight 返回当前在途请求数量，仅用于测试与诊断。
func (t *FlightTable) Inflight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.flights)
}
