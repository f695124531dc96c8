package binding

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/md-hub/md-hub/internal/cache"
	"github.com/md-hub/md-hub/internal/config"
	"github.com/md-hub/md-hub/internal/docapi"
	"github.com/md-hub/md-hub/internal/logging"
	"github.com/md-hub/md-hub/internal/querykey"
)

// ErrBindingDisabled 表示读绑定的启用条件不满足（例如文档 ID 为空），
// 此时既不触碰缓存也不发起网络请求。
var ErrBindingDisabled = errors.New("binding disabled: document id required")

// StaleTTLs 汇总三档 staleness 窗口。
type StaleTTLs struct {
	List   time.Duration
	Detail time.Duration
	Render time.Duration
}

// FromConfig 从全局配置提取窗口配置。
func FromConfig(cfg config.GlobalConfig) StaleTTLs {
	return StaleTTLs{
		List:   cfg.ListStaleTTL.DurationValue(),
		Detail: cfg.DetailStaleTTL.DurationValue(),
		Render: cfg.RenderStaleTTL.DurationValue(),
	}
}

// Bindings 组合远端客户端、共享缓存与在途请求表，是 UI 层唯一的
// 数据访问入口。整个进程共享一个实例。
type Bindings struct {
	client  *docapi.Client
	store   *cache.Store
	flights *cache.FlightTable
	ttl     StaleTTLs
	logger  *logrus.Logger
	now     func() time.Time
}

// New 构建 Bindings。logger 可为 nil。
func New(client *docapi.Client, store *cache.Store, ttl StaleTTLs, logger *logrus.Logger) *Bindings {
	return &Bindings{
		client:  client,
		store:   store,
		flights: cache.NewFlightTable(),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// ReadOption 调整单次读绑定行为。
type ReadOption func(*readOptions)

type readOptions struct {
	skipCache bool
}

// SkipCache 强制本次读取绕过缓存直达远端，结果仍会写回缓存。
func SkipCache() ReadOption {
	return func(o *readOptions) {
		o.skipCache = true
	}
}

func applyReadOptions(opts []ReadOption) readOptions {
	var resolved readOptions
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}

// fetchCached 实现统一的读路径：新鲜命中直接返回，否则经在途表去重
// 回源，成功后以完成时刻重置 staleness 窗口。
func fetchCached[T any](
	ctx context.Context,
	b *Bindings,
	op string,
	key querykey.Key,
	ttl time.Duration,
	skipCache bool,
	fetch func() (T, error),
) (T, error) {
	var zero T

	if !skipCache {
		if entry, ok := b.store.Get(key); ok && entry.Fresh(ttl, b.now()) {
			if value, ok := entry.Value.(T); ok {
				b.logQuery(op, key, true)
				return value, nil
			}
		}
	}

	result, err := b.flights.Do(ctx, key, func() (any, error) {
		startedAt := b.now()
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		// 携带发起时刻：若回源期间该键被失效/删除，旧值只能以
		// 失效态落库
		b.store.SetFetched(key, value, startedAt)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := result.(T)
	if !ok {
		return zero, errors.New("cache entry type mismatch")
	}
	b.logQuery(op, key, false)
	return value, nil
}

func (b *Bindings) logQuery(op string, key querykey.Key, cacheHit bool) {
	if b.logger == nil {
		return
	}
	b.logger.WithFields(logging.QueryFields(op, key.String(), cacheHit)).Debug("query_complete")
}

func (b *Bindings) logMutation(op, docID string) {
	if b.logger == nil {
		return
	}
	b.logger.WithFields(logging.MutationFields(op, docID)).Info("mutation_complete")
}
