package booking

import "sort"

// DetectConflicts 标记同一司机或同一车辆被重复指派且时段重叠的预订。
//
// 两条非取消预订 a、b 冲突当且仅当共享司机或车辆，且
// [start, end) 区间重叠：a.start < b.end && b.start < a.end。
// 返回至少卷入一个冲突的预订 ID 集合，不保证冲突对之间的顺序。
//
// 先按 (date, startTime) 排序，内层比较在日期分叉时提前 break——
// 单日内仍是 O(n²)，在单个运营商一天几十条预订的规模下足够。
func DetectConflicts(bookings []Booking) []string {
	sorted := make([]Booking, len(bookings))
	copy(sorted, bookings)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	flagged := make(map[string]struct{})
	for i := 0; i < len(sorted); i++ {
		a := &sorted[i]
		if a.Status == StatusCancelled {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			b := &sorted[j]
			if !a.Date.Equal(b.Date) {
				break
			}
			if b.Status == StatusCancelled {
				continue
			}
			if !sharesResource(a, b) {
				continue
			}
			if a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime) {
				flagged[a.ID] = struct{}{}
				flagged[b.ID] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(flagged))
	for id := range flagged {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sharesResource(a, b *Booking) bool {
	if a.DriverID != "" && a.DriverID == b.DriverID {
		return true
	}
	if a.VehicleID != "" && a.VehicleID == b.VehicleID {
		return true
	}
	return false
}
