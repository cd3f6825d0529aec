package timecard

import (
	"math"
	"time"
)

// 时间约定：
// - 所有落库时间戳为绝对时刻（UTC），时长一律 time.Time.Sub 相减，
//   绝不做本地挂钟减法，夏令时切换不会产生偏差
// - “日历日”“周起点”这类展示概念统一在固定展示时区里计算
// - Date / WeekStart 列按日期语义存储为该日历日的 UTC 零点

// FMCSA 客运司机 HOS 上限（配置可覆盖）。
const (
	DefaultDailyLimitHours  = 15.0
	DefaultWeeklyLimitHours = 70.0

	// 70 小时规则的滚动窗口：今天往回 7 天，共 8 个日历日。
	rollingWindow = 7 * 24 * time.Hour

	// 隔夜班次超过该时长未收卡则允许系统自动关闭。
	autoCloseAfter = 24 * time.Hour
)

const displayTimeLayout = "Jan 2, 2006 3:04 PM"

// calendarDate 返回 t 在展示时区下的日历日（存储形态：该日的 UTC 零点）。
func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sameCalendarDay 两个时刻是否落在展示时区的同一天。
func sameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// dateStartInstant 某个已存储日期（UTC 零点形态）在展示时区下的当天起点时刻。
func dateStartInstant(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dateEndInstant 当天 23:59:59 的绝对时刻，自动关闭时作为补卡下岗时间。
func dateEndInstant(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}

// weekStart 返回 t 所在周的周起点（周日）日历日，WeeklyHOS 的聚合键。
func weekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	back := int(local.Weekday()) // Sunday == 0
	y, m, d := local.AddDate(0, 0, -back).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// elapsedHours 两个绝对时刻之间的小时数，负值截断为 0。
func elapsedHours(from, to time.Time) float64 {
	h := to.Sub(from).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// roundHours 工时保留两位小数落库。
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// formatDisplay 按固定展示时区格式化时刻，和服务器/客户端本地时区无关。
func formatDisplay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(displayTimeLayout)
}
