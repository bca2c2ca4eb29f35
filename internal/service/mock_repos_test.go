package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"vobiss-inventory/backend/internal/model"
	"vobiss-inventory/backend/internal/repository"
)

// ── 内存 Mock Repository ──
//
// 服务层测试不依赖数据库与 Redis，全部走内存实现。
// mockRequestRepo/mockDraftRepo 额外记录写入调用次数，
// 用于断言"校验失败时不落库、不动草稿"。

type mockUserRepo struct {
	users []*model.User
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.UserID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	for i, u := range m.users {
		if u.UserID == user.UserID {
			m.users[i] = user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	for i, u := range m.users {
		if u.UserID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	total := int64(len(m.users))
	if offset >= len(m.users) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(m.users) {
		end = len(m.users)
	}
	out := make([]model.User, 0, end-offset)
	for _, u := range m.users[offset:end] {
		out = append(out, *u)
	}
	return out, total, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

type mockCategoryRepo struct {
	categories []*model.Category
	itemCounts map[string]int64
}

func (m *mockCategoryRepo) Create(_ context.Context, category *model.Category) error {
	if category.CategoryID == "" {
		category.CategoryID = fmt.Sprintf("cat-%d", len(m.categories)+1)
	}
	m.categories = append(m.categories, category)
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id string) (*model.Category, error) {
	for _, c := range m.categories {
		if c.CategoryID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) GetByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) Update(_ context.Context, category *model.Category) error {
	for i, c := range m.categories {
		if c.CategoryID == category.CategoryID {
			m.categories[i] = category
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) Delete(_ context.Context, id string) error {
	for i, c := range m.categories {
		if c.CategoryID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCategoryRepo) CountItems(_ context.Context, categoryID string) (int64, error) {
	return m.itemCounts[categoryID], nil
}

type mockItemRepo struct {
	items []*model.Item
}

func (m *mockItemRepo) Create(_ context.Context, item *model.Item) error {
	if item.ItemID == "" {
		item.ItemID = fmt.Sprintf("item-%d", len(m.items)+1)
	}
	m.items = append(m.items, item)
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id string) (*model.Item, error) {
	for _, it := range m.items {
		if it.ItemID == id {
			return it, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) Update(_ context.Context, item *model.Item) error {
	for i, it := range m.items {
		if it.ItemID == item.ItemID {
			m.items[i] = item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockItemRepo) Delete(_ context.Context, id string) error {
	for i, it := range m.items {
		if it.ItemID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockItemRepo) List(_ context.Context, filter repository.ItemFilter) ([]model.Item, error) {
	var out []model.Item
	for _, it := range m.items {
		if filter.CategoryID != "" && (it.CategoryID == nil || *it.CategoryID != filter.CategoryID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.LowStock && !it.LowStock() {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockItemRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

func (m *mockItemRepo) CountLowStock(_ context.Context) (int64, error) {
	var n int64
	for _, it := range m.items {
		if it.LowStock() {
			n++
		}
	}
	return n, nil
}

type mockRequestRepo struct {
	requests    []*model.Request
	rejections  []*model.Rejection
	createCalls int
	updateCalls int

	// 非 nil 时对应写操作直接返回该错误
	createErr error
}

func (m *mockRequestRepo) Create(_ context.Context, request *model.Request) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	request.RequestID = fmt.Sprintf("req-%d", len(m.requests)+1)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	for i := range request.Items {
		request.Items[i].RequestItemID = fmt.Sprintf("%s-item-%d", request.RequestID, i+1)
		request.Items[i].RequestID = request.RequestID
	}
	for i := range request.Approvers {
		request.Approvers[i].RequestApproverID = fmt.Sprintf("%s-appr-%d", request.RequestID, i+1)
		request.Approvers[i].RequestID = request.RequestID
	}
	m.requests = append(m.requests, request)
	return nil
}

// GetByID 返回深拷贝，模拟数据库读取：
// 服务层对返回对象的修改在 Update/UpdateApprover 之前不影响存储
func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.Request, error) {
	stored := m.find(id)
	if stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *stored
	cp.Items = append([]model.RequestItem(nil), stored.Items...)
	cp.Approvers = append([]model.RequestApprover(nil), stored.Approvers...)
	for _, rej := range m.rejections {
		if rej.RequestID == id {
			cp.Rejections = append(cp.Rejections, *rej)
		}
	}
	return &cp, nil
}

func (m *mockRequestRepo) Update(_ context.Context, request *model.Request) error {
	m.updateCalls++
	stored := m.find(request.RequestID)
	if stored == nil {
		return gorm.ErrRecordNotFound
	}
	items, approvers := stored.Items, stored.Approvers
	*stored = *request
	stored.Items, stored.Approvers = items, approvers
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *mockRequestRepo) ReplaceItems(_ context.Context, requestID string, items []model.RequestItem) error {
	stored := m.find(requestID)
	if stored == nil {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		items[i].RequestItemID = fmt.Sprintf("%s-item-%d", requestID, i+1)
		items[i].RequestID = requestID
	}
	stored.Items = items
	return nil
}

func (m *mockRequestRepo) UpdateApprover(_ context.Context, approver *model.RequestApprover) error {
	stored := m.find(approver.RequestID)
	if stored == nil {
		return gorm.ErrRecordNotFound
	}
	for i := range stored.Approvers {
		if stored.Approvers[i].ApproverID == approver.ApproverID {
			stored.Approvers[i] = *approver
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockRequestRepo) CreateRejection(_ context.Context, rejection *model.Rejection) error {
	rejection.RejectionID = fmt.Sprintf("rej-%d", len(m.rejections)+1)
	rejection.CreatedAt = time.Now()
	m.rejections = append(m.rejections, rejection)
	return nil
}

func (m *mockRequestRepo) List(_ context.Context, status string) ([]model.Request, error) {
	var out []model.Request
	for _, r := range m.requests {
		if status != "" && r.Status != status {
			continue
		}
		cp, _ := m.GetByID(context.Background(), r.RequestID)
		out = append(out, *cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRequestRepo) ListRecent(_ context.Context, limit int) ([]model.Request, error) {
	out := make([]model.Request, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRequestRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{
		model.RequestStatusPending:   0,
		model.RequestStatusApproved:  0,
		model.RequestStatusCompleted: 0,
		model.RequestStatusRejected:  0,
	}
	for _, r := range m.requests {
		counts[r.Status]++
	}
	return counts, nil
}

func (m *mockRequestRepo) find(id string) *model.Request {
	for _, r := range m.requests {
		if r.RequestID == id {
			return r
		}
	}
	return nil
}

type mockDraftRepo struct {
	drafts      map[string]*model.Draft
	saveCalls   int
	deleteCalls int
}

func newMockDraftRepo() *mockDraftRepo {
	return &mockDraftRepo{drafts: make(map[string]*model.Draft)}
}

func (m *mockDraftRepo) Save(_ context.Context, ownerID string, draft *model.Draft) error {
	m.saveCalls++
	draft.SavedAt = time.Now()
	m.drafts[ownerID] = draft
	return nil
}

func (m *mockDraftRepo) Load(_ context.Context, ownerID string) (*model.Draft, error) {
	draft, ok := m.drafts[ownerID]
	if !ok {
		return nil, repository.ErrDraftNotFound
	}
	return draft, nil
}

func (m *mockDraftRepo) Delete(_ context.Context, ownerID string) error {
	m.deleteCalls++
	delete(m.drafts, ownerID)
	return nil
}

// newTestRepo 组装全内存的 Repository 聚合
func newTestRepo() (*repository.Repository, *mockRequestRepo, *mockDraftRepo) {
	requestRepo := &mockRequestRepo{}
	draftRepo := newMockDraftRepo()
	repo := &repository.Repository{
		User:     &mockUserRepo{},
		Category: &mockCategoryRepo{itemCounts: make(map[string]int64)},
		Item:     &mockItemRepo{},
		Request:  requestRepo,
		Draft:    draftRepo,
	}
	return repo, requestRepo, draftRepo
}

// seedApprovers 注入若干审批人用户，返回其 ID
func seedApprovers(repo *repository.Repository, names ...string) []string {
	ids := make([]string, 0, len(names))
	for i, name := range names {
		id := fmt.Sprintf("approver-%d", i+1)
		_ = repo.User.Create(context.Background(), &model.User{
			UserID: id,
			Name:   name,
			Email:  fmt.Sprintf("%s@vobiss.local", strings.ToLower(name)),
			Role:   model.RoleApprover,
		})
		ids = append(ids, id)
	}
	return ids
}
