package timecard

import "time"

// Status 时卡状态枚举（持久化为字符串）。
type Status string

const (
	StatusOnDuty     Status = "on_duty"     // 已上岗，clock_out_time 为空
	StatusCompleted  Status = "completed"   // 正常下岗
	StatusAutoClosed Status = "auto_closed" // 系统补卡关闭的隔夜遗留班次
)

// SystemAutoCloseSignature 自动关闭班次时写入的签名占位值。
const SystemAutoCloseSignature = "SYSTEM_AUTO_CLOSE"

// Inspection 类型枚举。
const (
	InspectionPreTrip  = "pre_trip"
	InspectionPostTrip = "post_trip"
)

// TimeCard 是 time_cards 表的 GORM 模型：一次上岗到下岗的司机班次记录。
//
// 不变式：
// - 任意时刻每个司机至多一条 clock_out_time IS NULL 的记录（活动班次）
// - OnDutyHours 只在下岗（或自动关闭）时写入一次，按绝对时刻差计算
// - 记录只增改不删
type TimeCard struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	DriverID  string  `gorm:"index:idx_time_cards_driver;size:36;not null" json:"driverId"`
	VehicleID *string `gorm:"index;size:36" json:"vehicleId"` // NULL = 非驾驶班次（内勤）

	Date         time.Time  `gorm:"type:date;index;not null" json:"date"` // 展示时区下的班次日期
	ClockInTime  time.Time  `gorm:"not null" json:"clockInTime"`
	ClockOutTime *time.Time `gorm:"index:idx_time_cards_driver" json:"clockOutTime"`
	OnDutyHours  float64    `gorm:"not null;default:0" json:"onDutyHours"`
	Status       Status     `gorm:"type:varchar(16);index;not null" json:"status"`

	DriverSignature string     `gorm:"size:128" json:"driverSignature"`
	SignatureTime   *time.Time `json:"signatureTimestamp"`
	ClockInLocation string     `gorm:"size:255" json:"clockInLocation"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Active 该时卡是否仍是活动班次。
func (tc *TimeCard) Active() bool {
	return tc != nil && tc.ClockOutTime == nil
}

// Driving 是否驾驶班次（分配了车辆，收卡前必须有 post-trip 检查）。
func (tc *TimeCard) Driving() bool {
	return tc != nil && tc.VehicleID != nil && *tc.VehicleID != ""
}

// Inspection 是 inspections 表的 GORM 模型：挂在时卡上的车辆安全检查。
type Inspection struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TimeCardID string    `gorm:"index;size:36;not null" json:"timeCardId"`
	VehicleID  string    `gorm:"index;size:36" json:"vehicleId"`
	Type       string    `gorm:"type:varchar(16);not null" json:"type"` // pre_trip / post_trip
	Status     string    `gorm:"size:16;not null" json:"status"`        // passed / defects_noted
	Notes      string    `gorm:"size:512" json:"notes"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// WeeklyHOS 周工时滚动聚合，按 (driver_id, week_start) 累加。
// 只是合规侧的冗余汇总，记录本体仍在 time_cards 上。
type WeeklyHOS struct {
	DriverID         string    `gorm:"primaryKey;size:36" json:"driverId"`
	WeekStart        time.Time `gorm:"primaryKey;type:date" json:"weekStart"`
	TotalOnDutyHours float64   `gorm:"not null;default:0" json:"totalOnDutyHours"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName weekly_hos（默认复数化会得到怪名字）。
func (WeeklyHOS) TableName() string {
	return "weekly_hos"
}
