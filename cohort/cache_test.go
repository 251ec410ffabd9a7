package cohort

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/nutrikit/core"
)

// fakeUserStore 只实现 cohort 构建用到的两个查询。
type fakeUserStore struct {
	profiles   map[int64]core.GoalType
	inProgress map[core.GoalType][]int64
	calls      int
	err        error
}

func (s *fakeUserStore) GetUser(ctx context.Context, id int64) (*core.UserProfile, error) {
	return nil, core.ErrUserNotFound
}

func (s *fakeUserStore) CurrentGoal(ctx context.Context, id int64) (core.GoalType, bool, error) {
	return core.GoalUnknown, false, nil
}

func (s *fakeUserStore) ListUsersWithCompletedProfile(ctx context.Context) (map[int64]core.GoalType, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

func (s *fakeUserStore) ListUsersWithGoalInProgress(ctx context.Context, goal core.GoalType) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.inProgress[goal], nil
}

func TestUserIDsUnionSemantics(t *testing.T) {
	users := &fakeUserStore{
		profiles: map[int64]core.GoalType{
			1: core.GoalLoseWeight, // 仅画像匹配
			2: core.GoalMaintain,
			3: core.GoalLoseWeight, // 画像与进行中目标同时匹配
		},
		inProgress: map[core.GoalType][]int64{
			core.GoalLoseWeight: {3, 4}, // 4 仅进行中目标匹配
		},
	}
	c := New(users)

	ids, err := c.UserIDs(context.Background(), core.GoalLoseWeight)
	if err != nil {
		t.Fatalf("UserIDs: %v", err)
	}
	want := []int64{1, 3, 4}
	if len(ids) != len(want) {
		t.Fatalf("cohort size: got %d (%v), want %d", len(ids), ids, len(want))
	}
	for _, id := range want {
		if _, ok := ids[id]; !ok {
			t.Errorf("user %d missing from cohort", id)
		}
	}
	if _, ok := ids[2]; ok {
		t.Error("user 2 (maintain) must not be in lose-weight cohort")
	}
}

func TestUserIDsCachedUntilTTL(t *testing.T) {
	now := time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	users := &fakeUserStore{profiles: map[int64]core.GoalType{1: core.GoalMaintain}}
	c := New(users, WithClock(clock))

	if _, err := c.UserIDs(context.Background(), core.GoalMaintain); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := c.UserIDs(context.Background(), core.GoalMaintain); err != nil {
		t.Fatalf("second: %v", err)
	}
	if users.calls != 1 {
		t.Errorf("expected single build within TTL, got %d", users.calls)
	}

	// 过期后重建
	now = now.Add(DefaultRequestTTL + time.Minute)
	if _, err := c.UserIDs(context.Background(), core.GoalMaintain); err != nil {
		t.Fatalf("after expiry: %v", err)
	}
	if users.calls != 2 {
		t.Errorf("expected rebuild after TTL, got %d calls", users.calls)
	}
}

func TestUserIDsPerGoalKeys(t *testing.T) {
	users := &fakeUserStore{profiles: map[int64]core.GoalType{
		1: core.GoalMaintain,
		2: core.GoalGainWeight,
	}}
	c := New(users)

	maintain, _ := c.UserIDs(context.Background(), core.GoalMaintain)
	gain, _ := c.UserIDs(context.Background(), core.GoalGainWeight)

	if _, ok := maintain[1]; !ok {
		t.Error("maintain cohort missing user 1")
	}
	if _, ok := gain[2]; !ok {
		t.Error("gain cohort missing user 2")
	}
	if len(maintain) != 1 || len(gain) != 1 {
		t.Errorf("cohorts must be keyed independently: %v / %v", maintain, gain)
	}
}

func TestUserIDsPropagatesStoreError(t *testing.T) {
	users := &fakeUserStore{err: errors.New("db down")}
	c := New(users)
	if _, err := c.UserIDs(context.Background(), core.GoalMaintain); err == nil {
		t.Fatal("store failure must propagate")
	}
}

func TestRefreshAllPopulatesEveryGoal(t *testing.T) {
	users := &fakeUserStore{profiles: map[int64]core.GoalType{
		1: core.GoalLoseWeight,
		2: core.GoalMaintain,
		3: core.GoalGainWeight,
	}}
	c := New(users)

	if err := c.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}

	// 刷新后读取不再触发构建
	users.calls = 0
	for _, goal := range core.AllGoalTypes() {
		ids, err := c.UserIDs(context.Background(), goal)
		if err != nil {
			t.Fatalf("UserIDs(%s): %v", goal, err)
		}
		if len(ids) != 1 {
			t.Errorf("cohort %s: got %d users, want 1", goal, len(ids))
		}
	}
	if users.calls != 0 {
		t.Errorf("reads after refresh must hit cache, got %d builds", users.calls)
	}
}

func TestRefreshAllError(t *testing.T) {
	users := &fakeUserStore{err: errors.New("db down")}
	c := New(users)
	if err := c.RefreshAll(context.Background()); err == nil {
		t.Fatal("RefreshAll must surface store errors")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	users := &fakeUserStore{profiles: map[int64]core.GoalType{1: core.GoalMaintain}}
	kv := newMemKV()
	c := New(users, WithSnapshotStore(kv))

	if _, err := c.UserIDs(context.Background(), core.GoalMaintain); err != nil {
		t.Fatalf("build: %v", err)
	}

	// 新进程（新 Cache）命中快照层，不再查库
	users2 := &fakeUserStore{err: errors.New("must not be called")}
	c2 := New(users2, WithSnapshotStore(kv))
	ids, err := c2.UserIDs(context.Background(), core.GoalMaintain)
	if err != nil {
		t.Fatalf("snapshot read: %v", err)
	}
	if _, ok := ids[1]; !ok {
		t.Errorf("snapshot cohort missing user 1: %v", ids)
	}
}

// memKV 是测试用的最小 core.Store 实现。
type memKV struct{ data map[string][]byte }

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Name() string { return "testkv" }
func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}
func (m *memKV) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	m.data[key] = value
	return nil
}
func (m *memKV) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}
func (m *memKV) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}
func (m *memKV) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	for k, v := range kvs {
		m.data[k] = v
	}
	return nil
}
func (m *memKV) Close() error { return nil }
