package timecard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/common/config"
	"github.com/VinoFleet/VinoFleet/internal/common/logger"
	"github.com/VinoFleet/VinoFleet/internal/common/middleware"
	"github.com/google/uuid"
)

// Service 封装打卡/HOS 合规的核心用例（不依赖 HTTP），便于复用和测试。
//
// 司机的“当前状态”不单独落库，而是由活动时卡的有无推导——
// 少一个可能失步的冗余字段。
type Service struct {
	store Store
	log   logger.Logger

	loc         *time.Location // 固定展示时区
	dailyLimit  float64
	weeklyLimit float64

	// 周聚合是尽力而为的副作用，挂了不能拖垮 clock_out 本身。
	hosBreaker *middleware.CircuitBreaker

	now func() time.Time // 可注入时钟，测试用
}

// Option 调整 Service 行为。
type Option func(*Service)

// WithClock 替换时钟（测试用）。
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService 创建打卡服务。cfg.DisplayTimezone 必须是合法 IANA 时区名。
func NewService(store Store, log logger.Logger, cfg config.WorkflowConfig, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	tz := cfg.DisplayTimezone
	if tz == "" {
		tz = "America/Los_Angeles"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone %q: %w", tz, err)
	}
	daily := cfg.DailyLimitHours
	if daily <= 0 {
		daily = DefaultDailyLimitHours
	}
	weekly := cfg.WeeklyLimitHours
	if weekly <= 0 {
		weekly = DefaultWeeklyLimitHours
	}

	s := &Service{
		store:       store,
		log:         log,
		loc:         loc,
		dailyLimit:  daily,
		weeklyLimit: weekly,
		hosBreaker:  middleware.NewCircuitBreaker("weekly-hos", 5, 30*time.Second),
		now:         time.Now,
	}
	for _, apply := range opts {
		if apply != nil {
			apply(s)
		}
	}
	return s, nil
}

// ClockInInput clock_in 的入参。
type ClockInInput struct {
	VehicleID     string // 可空：空 = 非驾驶班次，跳过所有车辆/检查规则
	Location      string
	ForceClockOut bool // 允许系统关闭隔夜遗留班次
}

// ClockOutInput clock_out 的入参。
type ClockOutInput struct {
	Signature string
}

// ClockIn 执行上岗打卡。前置检查按序短路，每个分支返回独立的判别结果。
func (s *Service) ClockIn(ctx context.Context, driverID string, in ClockInInput) (Outcome, error) {
	if s == nil || s.store == nil {
		return Outcome{}, fmt.Errorf("service not initialized")
	}
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return Outcome{}, fmt.Errorf("driver id required")
	}

	now := s.now().UTC()
	var out Outcome

	err := s.store.WithinTx(ctx, func(st Store) error {
		active, err := st.ActiveCard(ctx, driverID)
		if err != nil {
			return err
		}
		if active != nil {
			// 同一天的活动班次：不允许重复上岗，不做任何写入。
			if sameCalendarDay(active.ClockInTime, now, s.loc) {
				out = Outcome{
					Status:   ClockAlreadyClockedIn,
					Message:  fmt.Sprintf("You are already clocked in since %s", formatDisplay(active.ClockInTime, s.loc)),
					TimeCard: active,
					Suggestions: []string{
						"Clock out to end your current shift before starting a new one",
					},
				}
				return nil
			}

			// 隔夜遗留班次：要么系统补卡关闭，要么让司机先处理。
			if !in.ForceClockOut && now.Sub(active.ClockInTime) <= autoCloseAfter {
				out = Outcome{
					Status:   ClockIncompletePrevious,
					Message:  fmt.Sprintf("You have an unfinished shift from %s", formatDisplay(active.ClockInTime, s.loc)),
					TimeCard: active,
					Suggestions: []string{
						"Review and close the previous shift before clocking in again",
						"Retry with forceClockOut to let the system close it",
					},
				}
				return nil
			}

			closed, err := s.autoClose(ctx, st, active)
			if err != nil {
				return err
			}
			out.AutoClosed = closed
		}

		// 车辆可选：不选车即非驾驶班次。
		var vehicleID *string
		vehicleLabel := ""
		if vid := strings.TrimSpace(in.VehicleID); vid != "" {
			v, err := st.FindVehicle(ctx, vid)
			if err != nil {
				return err
			}
			if v == nil {
				out.Status = ClockInvalidVehicle
				out.Message = "Selected vehicle does not exist"
				out.Suggestions = []string{
					"Pick a vehicle from the fleet list, or clock in without one for a non-driving shift",
				}
				return nil
			}
			if !v.IsActive {
				out.Status = ClockVehicleInactive
				out.Message = fmt.Sprintf("Vehicle %s is not in active service", v.Label())
				out.Suggestions = []string{"Choose a different vehicle"}
				return nil
			}
			holder, err := st.ActiveCardForVehicle(ctx, v.ID)
			if err != nil {
				return err
			}
			if holder != nil {
				name, err := st.DriverName(ctx, holder.DriverID)
				if err != nil || name == "" {
					name = holder.DriverID
				}
				out.Status = ClockVehicleInUse
				out.Message = fmt.Sprintf("Vehicle %s is currently in use by %s", v.Label(), name)
				out.Suggestions = []string{
					"Choose a different vehicle",
					fmt.Sprintf("Ask %s to clock out first", name),
				}
				return nil
			}
			id := v.ID
			vehicleID = &id
			vehicleLabel = v.Label()
		}

		location := strings.TrimSpace(in.Location)
		if location == "" {
			location = "Location not provided"
		}

		card := &TimeCard{
			ID:              uuid.NewString(),
			DriverID:        driverID,
			VehicleID:       vehicleID,
			Date:            calendarDate(now, s.loc),
			ClockInTime:     now,
			Status:          StatusOnDuty,
			ClockInLocation: location,
		}
		if err := st.CreateCard(ctx, card); err != nil {
			return err
		}

		msg := fmt.Sprintf("Clocked in at %s", formatDisplay(now, s.loc))
		if vehicleLabel != "" {
			msg += fmt.Sprintf(" with %s", vehicleLabel)
		}
		out.Status = ClockSuccess
		out.Message = msg
		out.TimeCard = card
		out.VehicleLabel = vehicleLabel
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// autoClose 系统补卡关闭隔夜遗留班次：下岗时间取当天 23:59:59。
func (s *Service) autoClose(ctx context.Context, st Store, stale *TimeCard) (*TimeCard, error) {
	end := dateEndInstant(stale.Date, s.loc).UTC()
	sigAt := s.now().UTC()

	stale.ClockOutTime = &end
	stale.OnDutyHours = roundHours(elapsedHours(stale.ClockInTime, end))
	stale.Status = StatusAutoClosed
	stale.DriverSignature = SystemAutoCloseSignature
	stale.SignatureTime = &sigAt
	if err := st.UpdateCard(ctx, stale); err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.WithFields(map[string]interface{}{
			"driver_id":    stale.DriverID,
			"time_card_id": stale.ID,
		}).Infof("auto-closed stale shift from %s", formatDisplay(stale.ClockInTime, s.loc))
	}
	return stale, nil
}

// ClockOut 执行下岗打卡。HOS 超限只产生提示性 warning，不阻塞收卡。
func (s *Service) ClockOut(ctx context.Context, driverID string, in ClockOutInput) (Outcome, error) {
	if s == nil || s.store == nil {
		return Outcome{}, fmt.Errorf("service not initialized")
	}
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return Outcome{}, fmt.Errorf("driver id required")
	}

	now := s.now().UTC()
	var out Outcome
	var closedHours float64

	err := s.store.WithinTx(ctx, func(st Store) error {
		active, err := st.ActiveCard(ctx, driverID)
		if err != nil {
			return err
		}
		if active == nil {
			out = Outcome{
				Status:      ClockNotClockedIn,
				Message:     "You are not clocked in",
				Suggestions: []string{"Clock in to start a shift"},
			}
			return nil
		}

		signature := strings.TrimSpace(in.Signature)
		if signature == "" {
			out = Outcome{
				Status:      ClockSignatureRequired,
				Message:     "Signature is required to clock out",
				Suggestions: []string{"Sign the time card to certify your hours"},
			}
			return nil
		}

		vehicleLabel := ""
		if active.Driving() {
			v, err := st.FindVehicle(ctx, *active.VehicleID)
			if err != nil {
				return err
			}
			if v != nil {
				vehicleLabel = v.Label()
			}

			// 硬性门槛：车辆班次必须先有 post-trip 检查才能收卡。
			done, err := st.HasInspection(ctx, active.ID, InspectionPostTrip)
			if err != nil {
				return err
			}
			if !done {
				out = Outcome{
					Status:       ClockPostTripRequired,
					Message:      "Post-trip inspection must be completed before clocking out",
					TimeCard:     active,
					VehicleLabel: vehicleLabel,
					Suggestions: []string{
						fmt.Sprintf("Complete the post-trip inspection for %s", vehicleLabel),
					},
				}
				return nil
			}
		}

		// 工时按绝对时刻差计算，夏令时切换不会引入偏差。
		hours := elapsedHours(active.ClockInTime, now)

		var warnings []string
		if hours > s.dailyLimit {
			warnings = append(warnings, fmt.Sprintf(
				"Shift of %.1f hours exceeds the %.0f-hour on-duty limit", hours, s.dailyLimit))
		}
		prior, err := st.CompletedHoursSince(ctx, driverID, now.Add(-rollingWindow))
		if err != nil {
			return err
		}
		if prior+hours > s.weeklyLimit {
			warnings = append(warnings, fmt.Sprintf(
				"On-duty total of %.1f hours in the trailing 8 days exceeds the %.0f-hour limit",
				prior+hours, s.weeklyLimit))
		}

		active.ClockOutTime = &now
		active.OnDutyHours = roundHours(hours)
		active.DriverSignature = signature
		active.SignatureTime = &now
		active.Status = StatusCompleted
		if err := st.UpdateCard(ctx, active); err != nil {
			return err
		}
		closedHours = active.OnDutyHours

		out = Outcome{
			Status:       ClockSuccess,
			Message:      fmt.Sprintf("Clocked out at %s", formatDisplay(now, s.loc)),
			Warnings:     warnings,
			TimeCard:     active,
			VehicleLabel: vehicleLabel,
			Summary: &ShiftSummary{
				ClockIn:      formatDisplay(active.ClockInTime, s.loc),
				ClockOut:     formatDisplay(now, s.loc),
				TotalHours:   active.OnDutyHours,
				VehicleLabel: vehicleLabel,
			},
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	// 周聚合累加：尽力而为，失败只记日志，时卡本体已经落库。
	if out.OK() {
		week := weekStart(now, s.loc)
		upsertErr := s.hosBreaker.Call(ctx, func() error {
			return s.store.AddWeeklyHours(ctx, driverID, week, closedHours)
		})
		if upsertErr != nil && s.log != nil {
			s.log.WithFields(map[string]interface{}{
				"driver_id":  driverID,
				"week_start": week.Format("2006-01-02"),
			}).Warnf("weekly HOS rollup failed: %v", upsertErr)
		}
	}
	return out, nil
}

// InspectionInput 记录一次车辆检查的入参。
type InspectionInput struct {
	Kind   string // pre_trip / post_trip
	Status string // passed / defects_noted，空串按 passed 处理
	Notes  string
}

// RecordInspection 在当前活动班次上记录一次车辆检查。
// post-trip 检查是驾驶班次收卡的前置条件（见 ClockOut 的硬性门槛）。
func (s *Service) RecordInspection(ctx context.Context, driverID string, in InspectionInput) (Outcome, error) {
	if s == nil || s.store == nil {
		return Outcome{}, fmt.Errorf("service not initialized")
	}
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return Outcome{}, fmt.Errorf("driver id required")
	}
	kind := strings.TrimSpace(in.Kind)
	if kind != InspectionPreTrip && kind != InspectionPostTrip {
		return Outcome{}, fmt.Errorf("invalid inspection type %q", in.Kind)
	}

	var out Outcome
	err := s.store.WithinTx(ctx, func(st Store) error {
		active, err := st.ActiveCard(ctx, driverID)
		if err != nil {
			return err
		}
		if active == nil {
			out = Outcome{
				Status:      ClockNotClockedIn,
				Message:     "You are not clocked in",
				Suggestions: []string{"Clock in before recording an inspection"},
			}
			return nil
		}
		if !active.Driving() {
			out = Outcome{
				Status:      ClockVehicleRequired,
				Message:     "Current shift has no vehicle to inspect",
				TimeCard:    active,
				Suggestions: []string{"Inspections apply to driving shifts only"},
			}
			return nil
		}

		status := strings.TrimSpace(in.Status)
		if status == "" {
			status = "passed"
		}
		ins := &Inspection{
			ID:         uuid.NewString(),
			TimeCardID: active.ID,
			VehicleID:  *active.VehicleID,
			Type:       kind,
			Status:     status,
			Notes:      strings.TrimSpace(in.Notes),
		}
		if err := st.CreateInspection(ctx, ins); err != nil {
			return err
		}

		label := ""
		if v, err := st.FindVehicle(ctx, *active.VehicleID); err == nil && v != nil {
			label = v.Label()
		}
		msg := "Pre-trip inspection recorded"
		if kind == InspectionPostTrip {
			msg = "Post-trip inspection recorded"
		}
		if label != "" {
			msg += fmt.Sprintf(" for %s", label)
		}
		out = Outcome{
			Status:       ClockSuccess,
			Message:      msg,
			TimeCard:     active,
			VehicleLabel: label,
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// WeeklyReport 当前周（周日起，展示时区）的聚合工时。
func (s *Service) WeeklyReport(ctx context.Context, driverID string) (HOSReport, error) {
	if s == nil || s.store == nil {
		return HOSReport{}, fmt.Errorf("service not initialized")
	}
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return HOSReport{}, fmt.Errorf("driver id required")
	}

	week := weekStart(s.now().UTC(), s.loc)
	total, err := s.store.WeeklyTotal(ctx, driverID, week)
	if err != nil {
		return HOSReport{}, err
	}
	remaining := s.weeklyLimit - total
	if remaining < 0 {
		remaining = 0
	}
	return HOSReport{
		WeekStart:        week.Format("2006-01-02"),
		TotalOnDutyHours: roundHours(total),
		WeeklyLimitHours: s.weeklyLimit,
		RemainingHours:   roundHours(remaining),
	}, nil
}

// Status 状态查询（只读，不做任何写入）。
func (s *Service) Status(ctx context.Context, driverID string) (StatusReport, error) {
	if s == nil || s.store == nil {
		return StatusReport{}, fmt.Errorf("service not initialized")
	}
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return StatusReport{}, fmt.Errorf("driver id required")
	}

	now := s.now().UTC()

	active, err := s.store.ActiveCard(ctx, driverID)
	if err != nil {
		return StatusReport{}, err
	}
	if active != nil {
		label := ""
		if active.Driving() {
			if v, err := s.store.FindVehicle(ctx, *active.VehicleID); err == nil && v != nil {
				label = v.Label()
			}
		}
		return StatusReport{
			Status:       DutyClockedIn,
			TimeCard:     active,
			ElapsedHours: roundHours(elapsedHours(active.ClockInTime, now)),
			VehicleLabel: label,
		}, nil
	}

	latest, err := s.store.LatestCompletedCard(ctx, driverID)
	if err != nil {
		return StatusReport{}, err
	}
	// 今天已经收过卡：给出班次摘要，UI 可提示“可开始下一班”。
	if latest != nil && latest.ClockOutTime != nil && sameCalendarDay(*latest.ClockOutTime, now, s.loc) {
		label := ""
		if latest.Driving() {
			if v, err := s.store.FindVehicle(ctx, *latest.VehicleID); err == nil && v != nil {
				label = v.Label()
			}
		}
		return StatusReport{
			Status:   DutyClockedOut,
			TimeCard: latest,
			Summary: &ShiftSummary{
				ClockIn:      formatDisplay(latest.ClockInTime, s.loc),
				ClockOut:     formatDisplay(*latest.ClockOutTime, s.loc),
				TotalHours:   latest.OnDutyHours,
				VehicleLabel: label,
			},
		}, nil
	}

	return StatusReport{Status: DutyNotClockedIn}, nil
}

// DisplayLocation 固定展示时区（handler 解析 schedule 日期参数用）。
func (s *Service) DisplayLocation() *time.Location {
	return s.loc
}

// Now 服务视角的当前时刻（走注入的时钟）。
// handler 取“今天”这类默认值必须经过这里，不能直接 time.Now。
func (s *Service) Now() time.Time {
	return s.now().UTC()
}
