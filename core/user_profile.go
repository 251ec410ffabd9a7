package core

import "time"

// Gender 性别枚举，用于特征向量的数值编码。
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
)

// Feature 返回性别的数值编码：male=1, female=2, 其他/未知=0。
func (g Gender) Feature() float64 {
	switch g {
	case GenderMale:
		return 1
	case GenderFemale:
		return 2
	default:
		return 0
	}
}

// ActivityLevel 日常活动水平枚举。
type ActivityLevel string

const (
	ActivityUnknown ActivityLevel = ""
	ActivityLow     ActivityLevel = "low"
	ActivityMedium  ActivityLevel = "medium"
	ActivityHigh    ActivityLevel = "high"
)

// Feature 返回活动水平的数值编码：low=1, medium=2, high=3, 未知=0。
func (a ActivityLevel) Feature() float64 {
	switch a {
	case ActivityLow:
		return 1
	case ActivityMedium:
		return 2
	case ActivityHigh:
		return 3
	default:
		return 0
	}
}

// defaultAge 是生日缺失时的兜底年龄。
const defaultAge = 30

// UserProfile 是用户健康画像的核心抽象：
//   - 静态属性（年龄/性别/活动水平）进入特征向量
//   - 营养目标驱动打分公式切换与 cohort 归属
//   - ProfileCompleted 决定冷启动加权是否生效
type UserProfile struct {
	UserID           int64
	Gender           Gender
	Birthdate        *time.Time // 可缺省，缺省时年龄按 defaultAge 计
	ActivityLevel    ActivityLevel
	Goal             GoalType // 画像级营养目标；进行中的目标实例优先于它
	ProfileCompleted bool
}

// AgeAt 按给定时刻计算年龄；生日缺失时返回默认值 30。
func (p *UserProfile) AgeAt(now time.Time) int {
	if p == nil || p.Birthdate == nil {
		return defaultAge
	}
	age := now.Year() - p.Birthdate.Year()
	// 生日未到则减一岁
	anniversary := time.Date(now.Year(), p.Birthdate.Month(), p.Birthdate.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		age--
	}
	if age < 0 {
		return defaultAge
	}
	return age
}
