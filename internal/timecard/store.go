package timecard

import (
	"context"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/vehicle"
)

// Store 打卡流程消费的持久化面。
// 状态机不关心背后是 MySQL 还是测试里的内存假实现；
// 所有方法都是同步查询，“未找到”返回 (nil, nil) 而不是错误。
type Store interface {
	// WithinTx 在一个事务里执行 fn，fn 里的检查-写入序列对并发请求可串行化。
	// clock_in / clock_out 的“每司机/每车辆至多一张活动时卡”不变式靠它守住。
	WithinTx(ctx context.Context, fn func(Store) error) error

	// ActiveCard 司机当前的活动时卡（clock_out_time IS NULL）。
	ActiveCard(ctx context.Context, driverID string) (*TimeCard, error)

	// ActiveCardForVehicle 当前占用该车辆的活动时卡。
	ActiveCardForVehicle(ctx context.Context, vehicleID string) (*TimeCard, error)

	CreateCard(ctx context.Context, tc *TimeCard) error
	UpdateCard(ctx context.Context, tc *TimeCard) error

	// LatestCompletedCard 司机最近一次正常完成的班次。
	LatestCompletedCard(ctx context.Context, driverID string) (*TimeCard, error)

	// CompletedHoursSince 该司机 clock_in_time >= since 的已完成班次工时合计。
	CompletedHoursSince(ctx context.Context, driverID string, since time.Time) (float64, error)

	// HasInspection 时卡上是否存在指定类型的检查记录。
	HasInspection(ctx context.Context, timeCardID, kind string) (bool, error)

	// CreateInspection 在时卡上记录一次车辆检查。
	CreateInspection(ctx context.Context, ins *Inspection) error

	// AddWeeklyHours 给 (driver, weekStart) 的周聚合累加工时（不存在则创建）。
	AddWeeklyHours(ctx context.Context, driverID string, weekStart time.Time, hours float64) error

	// WeeklyTotal 某司机某周的聚合工时，合规报表用；无记录返回 0。
	WeeklyTotal(ctx context.Context, driverID string, weekStart time.Time) (float64, error)

	// FindVehicle 车辆查询；不存在返回 (nil, nil)。
	FindVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error)

	// DriverName 车辆占用提示里展示的持有人名字。
	DriverName(ctx context.Context, driverID string) (string, error)
}
