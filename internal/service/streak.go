package service

import "time"

var streakMilestones = []int{7, 15, 30, 50, 100}

// IsStreakMilestone 判断连续天数是否恰好命中里程碑
func IsStreakMilestone(streak int) bool {
	for _, milestone := range streakMilestones {
		if streak == milestone {
			return true
		}
	}
	return false
}

// NextStreak 按自然日比较 last 与 now（使用 now 所在时区）：
// 同一天保持不变，昨天则 +1，其余情况（含首次、断档、未来日期）重置为 1。
func NextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}

	today := normalizeToDate(now)
	lastDay := normalizeToDate(last.In(now.Location()))

	switch {
	case lastDay.Equal(today):
		return current
	case lastDay.AddDate(0, 0, 1).Equal(today):
		return current + 1
	default:
		return 1
	}
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
