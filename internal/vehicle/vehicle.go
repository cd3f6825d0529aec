package vehicle

import (
	"fmt"
	"time"
)

// Vehicle 是 vehicles 表的 GORM 模型。
// 打卡流程只读它：校验存在性、是否停用、是否被占用。
type Vehicle struct {
	ID            string    `gorm:"primaryKey;size:36"`
	VehicleNumber string    `gorm:"uniqueIndex;size:32;not null"` // 车队编号，如 "12"
	Make          string    `gorm:"size:64"`
	Model         string    `gorm:"size:64"`
	Capacity      int       `gorm:"not null;default:0"` // 载客数
	IsActive      bool      `gorm:"not null;default:true"`
	Status        string    `gorm:"size:16;not null"` // available / maintenance / retired
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// Label 人类可读的车辆标识，打卡响应/班次摘要里展示。
func (v Vehicle) Label() string {
	return fmt.Sprintf("#%s %s %s", v.VehicleNumber, v.Make, v.Model)
}
