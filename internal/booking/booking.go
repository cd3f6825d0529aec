package booking

import "time"

// Status 预订状态。
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking 是 bookings 表的 GORM 模型：一次酒庄行程预订。
// DriverID/VehicleID 为空表示尚未指派。
type Booking struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Date         time.Time `gorm:"type:date;index;not null" json:"date"`
	StartTime    time.Time `gorm:"not null" json:"startTime"`
	EndTime      time.Time `gorm:"not null" json:"endTime"`
	CustomerName string    `gorm:"size:128" json:"customerName"`
	PartySize    int       `gorm:"not null;default:1" json:"partySize"`
	PickupPoint  string    `gorm:"size:255" json:"pickupPoint"`
	DriverID     string    `gorm:"index;size:36" json:"driverId"`
	VehicleID    string    `gorm:"index;size:36" json:"vehicleId"`
	Status       string    `gorm:"size:16;index;not null" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
