package core

import (
	"context"
	"time"
)

// 本文件定义推荐引擎对外部协作方的窄读接口。
// HTTP 层、鉴权、实体校验等均不在引擎范围内，引擎只通过这些接口读取数据。

// UserStore 提供用户画像与目标的读取。
type UserStore interface {
	// GetUser 按 ID 读取用户画像；不存在时返回 ErrUserNotFound。
	GetUser(ctx context.Context, id int64) (*UserProfile, error)

	// CurrentGoal 返回用户进行中的目标实例类型；ok=false 表示没有进行中的目标。
	CurrentGoal(ctx context.Context, id int64) (goal GoalType, ok bool, err error)

	// ListUsersWithCompletedProfile 返回所有已完成健康画像的用户及其画像级目标。
	ListUsersWithCompletedProfile(ctx context.Context) (map[int64]GoalType, error)

	// ListUsersWithGoalInProgress 返回持有指定类型进行中目标的用户 ID 列表。
	ListUsersWithGoalInProgress(ctx context.Context, goal GoalType) ([]int64, error)
}

// CatalogStore 提供候选食材池的分页读取。
// 实现方负责可见性过滤：已审核或请求者本人创建，且未删除。
type CatalogStore interface {
	PageItems(ctx context.Context, requesterID int64, page, pageSize int) ([]*Grocery, error)
}

// MealLogStore 提供历史餐食记录的聚合读取。
type MealLogStore interface {
	// CountConsumptionByItem 统计给定用户集合对各食材的历史食用次数（一次聚合查询）。
	CountConsumptionByItem(ctx context.Context, userIDs []int64) (map[int64]int64, error)

	// RecentlyConsumedItemIDs 返回用户自 since 以来吃过的食材 ID 集合，仅用于推荐解释。
	RecentlyConsumedItemIDs(ctx context.Context, userID int64, since time.Time) (map[int64]bool, error)
}

// Clock 提供当前时间，排序链路中所有时间计算都经由它，便于测试注入。
type Clock func() time.Time

// SystemClock 是默认的真实时钟。
func SystemClock() time.Time { return time.Now() }
