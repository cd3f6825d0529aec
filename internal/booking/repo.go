package booking

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, b *Booking) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repo) Update(ctx context.Context, b *Booking) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Booking, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var b Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListForDay 某个日历日的全部预订（含已取消，冲突检测自行过滤）。
func (r *Repo) ListForDay(ctx context.Context, day time.Time) ([]Booking, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("date = ?", day).
		Order("start_time asc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListForDriver 某司机某天的非取消预订，排班视图用。
func (r *Repo) ListForDriver(ctx context.Context, driverID string, day time.Time) ([]Booking, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND date = ? AND status <> ?", driverID, day, StatusCancelled).
		Order("start_time asc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
