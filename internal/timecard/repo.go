package timecard

import (
	"context"
	"fmt"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/driver"
	"github.com/VinoFleet/VinoFleet/internal/vehicle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo 基于 GORM/MySQL 的 Store 实现。
//
// WithinTx + SELECT ... FOR UPDATE 把“查活动时卡再写入”的序列放进
// 可串行化的临界区，并发的重复上岗/抢车不会双双通过检查。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

var _ Store = (*Repo)(nil)

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) WithinTx(ctx context.Context, fn func(Store) error) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{db: tx})
	})
}

func (r *Repo) ActiveCard(ctx context.Context, driverID string) (*TimeCard, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var tc TimeCard
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("driver_id = ? AND clock_out_time IS NULL", driverID).
		Order("clock_in_time DESC").
		First(&tc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (r *Repo) ActiveCardForVehicle(ctx context.Context, vehicleID string) (*TimeCard, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var tc TimeCard
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("vehicle_id = ? AND clock_out_time IS NULL", vehicleID).
		First(&tc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (r *Repo) CreateCard(ctx context.Context, tc *TimeCard) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(tc).Error
}

func (r *Repo) UpdateCard(ctx context.Context, tc *TimeCard) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(tc).Error
}

func (r *Repo) LatestCompletedCard(ctx context.Context, driverID string) (*TimeCard, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var tc TimeCard
	err := db.Where("driver_id = ? AND status = ?", driverID, StatusCompleted).
		Order("clock_out_time DESC").
		First(&tc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (r *Repo) CompletedHoursSince(ctx context.Context, driverID string, since time.Time) (float64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total float64
	err := db.Model(&TimeCard{}).
		Select("COALESCE(SUM(on_duty_hours), 0)").
		Where("driver_id = ? AND status = ? AND clock_in_time >= ?", driverID, StatusCompleted, since).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *Repo) HasInspection(ctx context.Context, timeCardID, kind string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	err := db.Model(&Inspection{}).
		Where("time_card_id = ? AND type = ?", timeCardID, kind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) AddWeeklyHours(ctx context.Context, driverID string, weekStart time.Time, hours float64) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	row := &WeeklyHOS{
		DriverID:         driverID,
		WeekStart:        weekStart,
		TotalOnDutyHours: hours,
	}
	// 冲突时累加而不是覆盖：聚合值是历史班次之和。
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "driver_id"}, {Name: "week_start"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_on_duty_hours": gorm.Expr("total_on_duty_hours + ?", hours),
		}),
	}).Create(row).Error
}

func (r *Repo) FindVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v vehicle.Vehicle
	err := db.Where("id = ?", id).First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) DriverName(ctx context.Context, driverID string) (string, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return "", fmt.Errorf("repo db is nil")
	}
	var d driver.Driver
	err := db.Where("id = ?", driverID).First(&d).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return d.DisplayName(), nil
}

// CreateInspection 记录一次车辆检查（post-trip 是收卡的硬性门槛）。
func (r *Repo) CreateInspection(ctx context.Context, ins *Inspection) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(ins).Error
}

// WeeklyTotal 查询某司机某周的聚合工时（合规报表用）。
func (r *Repo) WeeklyTotal(ctx context.Context, driverID string, weekStart time.Time) (float64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var row WeeklyHOS
	err := db.Where("driver_id = ? AND week_start = ?", driverID, weekStart).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.TotalOnDutyHours, nil
}
