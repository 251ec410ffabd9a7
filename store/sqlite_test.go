package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/nutrikit/core"
)

func openTestDB(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQL(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *SQLStore, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := s.DB().Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}

func TestGetUser(t *testing.T) {
	s := openTestDB(t)
	seed(t, s,
		`INSERT INTO users (id, gender, birthdate, activity_level, goal, profile_completed)
		 VALUES (1, 'female', 637977600, 'high', 'lose_weight', 1)`, // 1990-03-21
		`INSERT INTO users (id, goal) VALUES (2, 'unknown')`,
	)

	u, err := s.GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Gender != core.GenderFemale || u.ActivityLevel != core.ActivityHigh {
		t.Errorf("demographics: %+v", u)
	}
	if u.Goal != core.GoalLoseWeight || !u.ProfileCompleted {
		t.Errorf("goal/profile: %+v", u)
	}
	if u.Birthdate == nil || u.Birthdate.Year() != 1990 {
		t.Errorf("birthdate: %v", u.Birthdate)
	}

	// 生日缺省
	u2, err := s.GetUser(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetUser(2): %v", err)
	}
	if u2.Birthdate != nil {
		t.Errorf("expected nil birthdate, got %v", u2.Birthdate)
	}

	if _, err := s.GetUser(context.Background(), 999); !core.IsUserNotFound(err) {
		t.Errorf("missing user: %v", err)
	}
}

func TestCurrentGoal(t *testing.T) {
	s := openTestDB(t)
	seed(t, s,
		`INSERT INTO goals (user_id, goal, status) VALUES (1, 'maintain', 'completed')`,
		`INSERT INTO goals (user_id, goal, status) VALUES (1, 'gain_weight', 'in_progress')`,
	)

	goal, ok, err := s.CurrentGoal(context.Background(), 1)
	if err != nil {
		t.Fatalf("CurrentGoal: %v", err)
	}
	if !ok || goal != core.GoalGainWeight {
		t.Errorf("got %v ok=%v, want gain_weight true", goal, ok)
	}

	_, ok, err = s.CurrentGoal(context.Background(), 2)
	if err != nil {
		t.Fatalf("CurrentGoal(2): %v", err)
	}
	if ok {
		t.Error("user without goals must report ok=false")
	}
}

func TestCohortQueries(t *testing.T) {
	s := openTestDB(t)
	seed(t, s,
		`INSERT INTO users (id, goal, profile_completed) VALUES (1, 'lose_weight', 1)`,
		`INSERT INTO users (id, goal, profile_completed) VALUES (2, 'maintain', 1)`,
		`INSERT INTO users (id, goal, profile_completed) VALUES (3, 'lose_weight', 0)`,
		`INSERT INTO goals (user_id, goal, status) VALUES (4, 'lose_weight', 'in_progress')`,
		`INSERT INTO goals (user_id, goal, status) VALUES (4, 'lose_weight', 'in_progress')`,
		`INSERT INTO goals (user_id, goal, status) VALUES (5, 'lose_weight', 'completed')`,
	)

	profiles, err := s.ListUsersWithCompletedProfile(context.Background())
	if err != nil {
		t.Fatalf("ListUsersWithCompletedProfile: %v", err)
	}
	if len(profiles) != 2 || profiles[1] != core.GoalLoseWeight || profiles[2] != core.GoalMaintain {
		t.Errorf("profiles: %v", profiles)
	}

	ids, err := s.ListUsersWithGoalInProgress(context.Background(), core.GoalLoseWeight)
	if err != nil {
		t.Fatalf("ListUsersWithGoalInProgress: %v", err)
	}
	if len(ids) != 1 || ids[0] != 4 {
		t.Errorf("in-progress holders (distinct, in_progress only): %v", ids)
	}
}

func TestPageItemsVisibility(t *testing.T) {
	s := openTestDB(t)
	seed(t, s,
		`INSERT INTO groceries (id, name, category, approved, created_by) VALUES (1, 'apple', 'fruit', 1, 0)`,
		`INSERT INTO groceries (id, name, category, approved, created_by) VALUES (2, 'my mix', 'grain', 0, 7)`,
		`INSERT INTO groceries (id, name, category, approved, created_by) VALUES (3, 'pending', 'meat', 0, 8)`,
		`INSERT INTO groceries (id, name, category, approved, deleted) VALUES (4, 'gone', 'meat', 1, 1)`,
	)

	items, err := s.PageItems(context.Background(), 7, 1, 10)
	if err != nil {
		t.Fatalf("PageItems: %v", err)
	}
	got := make(map[int64]bool)
	for _, g := range items {
		got[g.ID] = true
	}
	if !got[1] || !got[2] {
		t.Errorf("approved + own-authored must be visible: %v", got)
	}
	if got[3] || got[4] {
		t.Errorf("foreign-unapproved and deleted must be hidden: %v", got)
	}
}

func TestPageItemsPaging(t *testing.T) {
	s := openTestDB(t)
	for i := 1; i <= 5; i++ {
		if _, err := s.DB().Exec(
			`INSERT INTO groceries (id, name, approved) VALUES (?, 'item', 1)`, i); err != nil {
			t.Fatalf("seed grocery %d: %v", i, err)
		}
	}

	page1, err := s.PageItems(context.Background(), 0, 1, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	page2, err := s.PageItems(context.Background(), 0, 2, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("page sizes: %d / %d", len(page1), len(page2))
	}
	if page1[1].ID >= page2[0].ID {
		t.Errorf("pages must be ordered by id: %d then %d", page1[1].ID, page2[0].ID)
	}
}

func TestConsumptionQueries(t *testing.T) {
	s := openTestDB(t)
	now := time.Now()
	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	seedLog := func(userID, groceryID int64, at time.Time) {
		if _, err := s.DB().Exec(
			`INSERT INTO meal_log (user_id, grocery_id, consumed_at) VALUES (?, ?, ?)`,
			userID, groceryID, at.Unix()); err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}
	seedLog(1, 10, recent)
	seedLog(1, 10, old)
	seedLog(2, 10, recent)
	seedLog(2, 11, recent)
	seedLog(3, 12, recent) // 3 不在 cohort 里

	counts, err := s.CountConsumptionByItem(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("CountConsumptionByItem: %v", err)
	}
	if counts[10] != 3 || counts[11] != 1 {
		t.Errorf("counts: %v", counts)
	}
	if _, ok := counts[12]; ok {
		t.Error("item consumed only outside cohort must be absent")
	}

	empty, err := s.CountConsumptionByItem(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty cohort: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty cohort must yield empty map: %v", empty)
	}

	ids, err := s.RecentlyConsumedItemIDs(context.Background(), 1, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("RecentlyConsumedItemIDs: %v", err)
	}
	if !ids[10] || len(ids) != 1 {
		t.Errorf("recent ids (window cut): %v", ids)
	}
}
