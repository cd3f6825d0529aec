package timecard

// ClockStatus 打卡操作的结果判别值。
//
// 可预期的业务分支（车被占用、缺签名、缺检查……）一律作为数据返回，
// 不用 error 表达；error 只留给真正的系统故障（数据库挂了等）。
type ClockStatus string

const (
	ClockSuccess            ClockStatus = "success"
	ClockAlreadyClockedIn   ClockStatus = "already_clocked_in"
	ClockIncompletePrevious ClockStatus = "incomplete_previous"
	ClockInvalidVehicle     ClockStatus = "invalid_vehicle"
	ClockVehicleInactive    ClockStatus = "vehicle_inactive"
	ClockVehicleInUse       ClockStatus = "vehicle_in_use"
	ClockNotClockedIn       ClockStatus = "not_clocked_in"
	ClockSignatureRequired  ClockStatus = "signature_required"
	ClockPostTripRequired   ClockStatus = "post_trip_required"
	ClockVehicleRequired    ClockStatus = "vehicle_required" // 非驾驶班次上记录检查
)

// ShiftSummary 下岗后给司机看的班次摘要（时间按固定展示时区格式化）。
type ShiftSummary struct {
	ClockIn      string  `json:"clockIn"`
	ClockOut     string  `json:"clockOut"`
	TotalHours   float64 `json:"totalHours"`
	VehicleLabel string  `json:"vehicleLabel,omitempty"`
}

// Outcome 打卡操作的统一返回。Status 为判别字段，其余按需携带。
type Outcome struct {
	Status      ClockStatus `json:"status"`
	Message     string      `json:"message"`
	Suggestions []string    `json:"suggestions,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`

	TimeCard     *TimeCard     `json:"timeCard,omitempty"`
	VehicleLabel string        `json:"vehicleLabel,omitempty"`
	Summary      *ShiftSummary `json:"summary,omitempty"`

	// AutoClosed 本次 clock_in 顺带关闭的隔夜遗留班次（如有）。
	AutoClosed *TimeCard `json:"autoClosedCard,omitempty"`
}

// OK 是否真正成功（其余都是可恢复的业务分支）。
func (o Outcome) OK() bool {
	return o.Status == ClockSuccess
}

// DutyState 状态查询的判别值。
type DutyState string

const (
	DutyClockedIn    DutyState = "clocked_in"
	DutyClockedOut   DutyState = "clocked_out"
	DutyNotClockedIn DutyState = "not_clocked_in"
)

// HOSReport 当前周（周日起）聚合工时，合规报表接口的返回。
type HOSReport struct {
	WeekStart        string  `json:"weekStart"` // YYYY-MM-DD
	TotalOnDutyHours float64 `json:"totalOnDutyHours"`
	WeeklyLimitHours float64 `json:"weeklyLimitHours"`
	RemainingHours   float64 `json:"remainingHours"`
}

// StatusReport 状态查询（只读）的返回。
type StatusReport struct {
	Status       DutyState     `json:"status"`
	TimeCard     *TimeCard     `json:"timeCard,omitempty"`
	ElapsedHours float64       `json:"elapsedHours,omitempty"` // clocked_in 时的实时工时
	VehicleLabel string        `json:"vehicleLabel,omitempty"`
	Summary      *ShiftSummary `json:"summary,omitempty"` // clocked_out 时最近一次班次摘要
}
