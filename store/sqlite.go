package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rushteam/nutrikit/core"
)

// SQLStore 是 SQLite 实现的关系层读接口：
// core.UserStore / core.CatalogStore / core.MealLogStore。
// 引擎只读，写路径属于外围 CRUD 服务，不在这里。
type SQLStore struct {
	db *sql.DB
}

// OpenSQL 打开（必要时初始化）SQLite 库。path 可以是 ":memory:"。
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &SQLStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// DB 暴露底层连接，给数据导入脚本/测试用。
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
	  id INTEGER PRIMARY KEY,
	  gender TEXT NOT NULL DEFAULT '',
	  birthdate INTEGER,
	  activity_level TEXT NOT NULL DEFAULT '',
	  goal TEXT NOT NULL DEFAULT 'unknown',
	  profile_completed INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS goals (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  goal TEXT NOT NULL,
	  status TEXT NOT NULL DEFAULT 'in_progress'
	);
	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id, status);
	CREATE INDEX IF NOT EXISTS idx_goals_goal ON goals(goal, status);
	CREATE TABLE IF NOT EXISTS groceries (
	  id INTEGER PRIMARY KEY,
	  name TEXT NOT NULL,
	  category TEXT NOT NULL DEFAULT 'other',
	  protein_per_100 REAL NOT NULL DEFAULT 0,
	  carbs_per_100 REAL NOT NULL DEFAULT 0,
	  fat_per_100 REAL NOT NULL DEFAULT 0,
	  calories_per_100 REAL NOT NULL DEFAULT 0,
	  unit TEXT NOT NULL DEFAULT 'g',
	  grams_per_piece REAL,
	  approved INTEGER NOT NULL DEFAULT 0,
	  deleted INTEGER NOT NULL DEFAULT 0,
	  created_by INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS meal_log (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  grocery_id INTEGER NOT NULL,
	  consumed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_meal_log_user ON meal_log(user_id, consumed_at);
	CREATE INDEX IF NOT EXISTS idx_meal_log_grocery ON meal_log(grocery_id);
	`)
	return err
}

func (s *SQLStore) GetUser(ctx context.Context, id int64) (*core.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, gender, birthdate, activity_level, goal, profile_completed
		FROM users WHERE id = ?`, id)

	var (
		u         core.UserProfile
		gender    string
		birth     sql.NullInt64
		activity  string
		goal      string
		completed int
	)
	if err := row.Scan(&u.UserID, &gender, &birth, &activity, &goal, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	u.Gender = core.Gender(gender)
	u.ActivityLevel = core.ActivityLevel(activity)
	u.Goal = core.ParseGoalType(goal)
	u.ProfileCompleted = completed != 0
	if birth.Valid {
		t := time.Unix(birth.Int64, 0).UTC()
		u.Birthdate = &t
	}
	return &u, nil
}

func (s *SQLStore) CurrentGoal(ctx context.Context, id int64) (core.GoalType, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT goal FROM goals
		WHERE user_id = ? AND status = 'in_progress'
		ORDER BY id DESC LIMIT 1`, id)

	var goal string
	if err := row.Scan(&goal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.GoalUnknown, false, nil
		}
		return core.GoalUnknown, false, fmt.Errorf("query current goal: %w", err)
	}
	return core.ParseGoalType(goal), true, nil
}

func (s *SQLStore) ListUsersWithCompletedProfile(ctx context.Context) (map[int64]core.GoalType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, goal FROM users WHERE profile_completed = 1`)
	if err != nil {
		return nil, fmt.Errorf("list completed profiles: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]core.GoalType)
	for rows.Next() {
		var (
			id   int64
			goal string
		)
		if err := rows.Scan(&id, &goal); err != nil {
			return nil, err
		}
		out[id] = core.ParseGoalType(goal)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListUsersWithGoalInProgress(ctx context.Context, goal core.GoalType) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM goals
		WHERE goal = ? AND status = 'in_progress'`, goal.String())
	if err != nil {
		return nil, fmt.Errorf("list in-progress goals: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// PageItems 返回请求者可见的候选食材页：已审核或本人创建，且未删除。
// 按 ID 升序保证同一页请求的确定性。
func (s *SQLStore) PageItems(ctx context.Context, requesterID int64, page, pageSize int) ([]*core.Grocery, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, protein_per_100, carbs_per_100, fat_per_100,
		       calories_per_100, unit, grams_per_piece, approved, deleted, created_by
		FROM groceries
		WHERE deleted = 0 AND (approved = 1 OR created_by = ?)
		ORDER BY id
		LIMIT ? OFFSET ?`, requesterID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("page groceries: %w", err)
	}
	defer rows.Close()

	var out []*core.Grocery
	for rows.Next() {
		var (
			g        core.Grocery
			category string
			grams    sql.NullFloat64
			approved int
			deleted  int
		)
		if err := rows.Scan(&g.ID, &g.Name, &category, &g.ProteinPer100, &g.CarbsPer100,
			&g.FatPer100, &g.CaloriesPer100, &g.Unit, &grams, &approved, &deleted, &g.CreatedBy); err != nil {
			return nil, err
		}
		g.Category = core.FoodCategory(category)
		g.Approved = approved != 0
		g.Deleted = deleted != 0
		if grams.Valid {
			v := grams.Float64
			g.GramsPerPiece = &v
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

// CountConsumptionByItem 一次聚合查询统计用户集合对各食材的历史食用次数。
func (s *SQLStore) CountConsumptionByItem(ctx context.Context, userIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64)
	if len(userIDs) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT grocery_id, COUNT(*) FROM meal_log
		WHERE user_id IN (`+placeholders+`)
		GROUP BY grocery_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("count consumption: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID int64
			count  int64
		)
		if err := rows.Scan(&itemID, &count); err != nil {
			return nil, err
		}
		out[itemID] = count
	}
	return out, rows.Err()
}

func (s *SQLStore) RecentlyConsumedItemIDs(ctx context.Context, userID int64, since time.Time) (map[int64]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT grocery_id FROM meal_log
		WHERE user_id = ? AND consumed_at >= ?`, userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("recent consumption: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

var (
	_ core.UserStore    = (*SQLStore)(nil)
	_ core.CatalogStore = (*SQLStore)(nil)
	_ core.MealLogStore = (*SQLStore)(nil)
)
