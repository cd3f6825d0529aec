package timecard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/common/config"
	"github.com/VinoFleet/VinoFleet/internal/vehicle"
)

// fakeStore 内存版 Store，按 map/slice 存行，替代 MySQL。
type fakeStore struct {
	mu          sync.Mutex
	cards       []*TimeCard
	vehicles    map[string]*vehicle.Vehicle
	inspections map[string][]string // timeCardID -> 检查类型
	weekly      map[string]float64  // driverID|weekStart
	drivers     map[string]string   // driverID -> 展示名
	weeklyErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vehicles:    make(map[string]*vehicle.Vehicle),
		inspections: make(map[string][]string),
		weekly:      make(map[string]float64),
		drivers:     make(map[string]string),
	}
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

func (f *fakeStore) ActiveCard(ctx context.Context, driverID string) (*TimeCard, error) {
	for _, tc := range f.cards {
		if tc.DriverID == driverID && tc.ClockOutTime == nil {
			return tc, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ActiveCardForVehicle(ctx context.Context, vehicleID string) (*TimeCard, error) {
	for _, tc := range f.cards {
		if tc.ClockOutTime == nil && tc.VehicleID != nil && *tc.VehicleID == vehicleID {
			return tc, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateCard(ctx context.Context, tc *TimeCard) error {
	f.cards = append(f.cards, tc)
	return nil
}

func (f *fakeStore) UpdateCard(ctx context.Context, tc *TimeCard) error {
	for i, existing := range f.cards {
		if existing.ID == tc.ID {
			f.cards[i] = tc
			return nil
		}
	}
	return fmt.Errorf("card %s not found", tc.ID)
}

func (f *fakeStore) LatestCompletedCard(ctx context.Context, driverID string) (*TimeCard, error) {
	var latest *TimeCard
	for _, tc := range f.cards {
		if tc.DriverID != driverID || tc.Status != StatusCompleted || tc.ClockOutTime == nil {
			continue
		}
		if latest == nil || tc.ClockOutTime.After(*latest.ClockOutTime) {
			latest = tc
		}
	}
	return latest, nil
}

func (f *fakeStore) CompletedHoursSince(ctx context.Context, driverID string, since time.Time) (float64, error) {
	total := 0.0
	for _, tc := range f.cards {
		if tc.DriverID == driverID && tc.Status == StatusCompleted && !tc.ClockInTime.Before(since) {
			total += tc.OnDutyHours
		}
	}
	return total, nil
}

func (f *fakeStore) HasInspection(ctx context.Context, timeCardID, kind string) (bool, error) {
	for _, k := range f.inspections[timeCardID] {
		if k == kind {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateInspection(ctx context.Context, ins *Inspection) error {
	f.inspections[ins.TimeCardID] = append(f.inspections[ins.TimeCardID], ins.Type)
	return nil
}

func (f *fakeStore) AddWeeklyHours(ctx context.Context, driverID string, weekStart time.Time, hours float64) error {
	if f.weeklyErr != nil {
		return f.weeklyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weekly[driverID+"|"+weekStart.Format("2006-01-02")] += hours
	return nil
}

func (f *fakeStore) WeeklyTotal(ctx context.Context, driverID string, weekStart time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.weekly[driverID+"|"+weekStart.Format("2006-01-02")], nil
}

func (f *fakeStore) FindVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	return f.vehicles[id], nil
}

func (f *fakeStore) DriverName(ctx context.Context, driverID string) (string, error) {
	return f.drivers[driverID], nil
}

func (f *fakeStore) activeCount(driverID string) int {
	n := 0
	for _, tc := range f.cards {
		if tc.DriverID == driverID && tc.ClockOutTime == nil {
			n++
		}
	}
	return n
}

// testClock 可推进的假时钟。基准取一个 PDT 期间的固定时刻。
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	// 2026-03-10 15:00 UTC == 08:00 America/Los_Angeles (PDT)
	return &testClock{now: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T, store Store, clock *testClock) *Service {
	t.Helper()
	svc, err := NewService(store, nil, config.WorkflowConfig{
		DisplayTimezone: "America/Los_Angeles",
	}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func addVehicle(f *fakeStore, id, number, make_, model string, active bool) {
	f.vehicles[id] = &vehicle.Vehicle{
		ID: id, VehicleNumber: number, Make: make_, Model: model,
		IsActive: active, Status: "available",
	}
}

func TestClockInAndOutHappyPath(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	addVehicle(store, "v-1", "12", "Ford", "Transit", true)
	ctx := context.Background()

	out, err := svc.ClockIn(ctx, "drv-1", ClockInInput{VehicleID: "v-1", Location: "Depot"})
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if out.Status != ClockSuccess {
		t.Fatalf("expected success, got %s (%s)", out.Status, out.Message)
	}
	if out.TimeCard == nil || !out.TimeCard.Active() {
		t.Fatalf("expected active time card")
	}
	if out.VehicleLabel != "#12 Ford Transit" {
		t.Fatalf("unexpected vehicle label: %s", out.VehicleLabel)
	}
	if out.TimeCard.ClockInLocation != "Depot" {
		t.Fatalf("unexpected location: %s", out.TimeCard.ClockInLocation)
	}

	clock.Advance(8 * time.Hour)

	// 走正式的检查记录入口，而不是直接往 store 里塞
	ins, err := svc.RecordInspection(ctx, "drv-1", InspectionInput{Kind: InspectionPostTrip})
	if err != nil {
		t.Fatalf("RecordInspection: %v", err)
	}
	if ins.Status != ClockSuccess {
		t.Fatalf("expected inspection recorded, got %s (%s)", ins.Status, ins.Message)
	}
	if ins.VehicleLabel != "#12 Ford Transit" {
		t.Fatalf("unexpected inspection vehicle label: %s", ins.VehicleLabel)
	}

	res, err := svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "John Doe"})
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if res.Status != ClockSuccess {
		t.Fatalf("expected success, got %s (%s)", res.Status, res.Message)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if res.TimeCard.OnDutyHours != 8 {
		t.Fatalf("expected 8 on-duty hours, got %v", res.TimeCard.OnDutyHours)
	}
	if res.TimeCard.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", res.TimeCard.Status)
	}
	if res.Summary == nil || res.Summary.TotalHours != 8 {
		t.Fatalf("expected summary with 8 hours, got %+v", res.Summary)
	}
	if store.activeCount("drv-1") != 0 {
		t.Fatalf("expected no active card after clock out")
	}

	// 周聚合已累加
	week := weekStart(clock.Now(), svc.DisplayLocation())
	if got := store.weekly["drv-1|"+week.Format("2006-01-02")]; got != 8 {
		t.Fatalf("expected weekly rollup of 8, got %v", got)
	}
}

func TestDoubleClockInLeavesSingleCard(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()

	if out, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{}); out.Status != ClockSuccess {
		t.Fatalf("first clock in failed: %s", out.Status)
	}
	out, err := svc.ClockIn(ctx, "drv-1", ClockInInput{})
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if out.Status != ClockAlreadyClockedIn {
		t.Fatalf("expected already_clocked_in, got %s", out.Status)
	}
	if len(store.cards) != 1 {
		t.Fatalf("expected row count unchanged, got %d", len(store.cards))
	}
	if store.activeCount("drv-1") != 1 {
		t.Fatalf("invariant violated: %d active cards", store.activeCount("drv-1"))
	}
}

func TestClockInVehicleValidation(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	addVehicle(store, "v-1", "7", "Mercedes", "Sprinter", true)
	addVehicle(store, "v-2", "9", "Ford", "E-450", false)
	store.drivers["drv-1"] = "Alice Miller"
	ctx := context.Background()

	// 不存在的车
	out, err := svc.ClockIn(ctx, "drv-2", ClockInInput{VehicleID: "nope"})
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if out.Status != ClockInvalidVehicle {
		t.Fatalf("expected invalid_vehicle, got %s", out.Status)
	}

	// 停用的车
	out, _ = svc.ClockIn(ctx, "drv-2", ClockInInput{VehicleID: "v-2"})
	if out.Status != ClockVehicleInactive {
		t.Fatalf("expected vehicle_inactive, got %s", out.Status)
	}

	// 被别人占用的车：提示里要点名持有司机
	if out, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{VehicleID: "v-1"}); out.Status != ClockSuccess {
		t.Fatalf("setup clock in failed: %s", out.Status)
	}
	out, _ = svc.ClockIn(ctx, "drv-2", ClockInInput{VehicleID: "v-1"})
	if out.Status != ClockVehicleInUse {
		t.Fatalf("expected vehicle_in_use, got %s", out.Status)
	}
	if !strings.Contains(out.Message, "Alice Miller") {
		t.Fatalf("expected holder name in message, got %q", out.Message)
	}
	if store.activeCount("drv-2") != 0 {
		t.Fatalf("expected no card created for drv-2")
	}
}

func TestNonDrivingShiftSkipsInspection(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()

	out, err := svc.ClockIn(ctx, "drv-1", ClockInInput{})
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if out.Status != ClockSuccess {
		t.Fatalf("expected success, got %s", out.Status)
	}
	if out.TimeCard.VehicleID != nil {
		t.Fatalf("expected nil vehicle id for non-driving shift")
	}
	if out.TimeCard.ClockInLocation != "Location not provided" {
		t.Fatalf("expected default location, got %s", out.TimeCard.ClockInLocation)
	}

	// 没有任何检查记录也能直接收卡
	clock.Advance(6 * time.Hour)
	res, err := svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "J.D."})
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if res.Status != ClockSuccess {
		t.Fatalf("expected success without post-trip, got %s", res.Status)
	}
}

func TestClockOutGates(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	addVehicle(store, "v-1", "3", "Ford", "Transit", true)
	ctx := context.Background()

	// 未上岗
	out, err := svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "X"})
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if out.Status != ClockNotClockedIn {
		t.Fatalf("expected not_clocked_in, got %s", out.Status)
	}

	started, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{VehicleID: "v-1"})
	clock.Advance(4 * time.Hour)

	// 缺签名：不做任何写入
	out, _ = svc.ClockOut(ctx, "drv-1", ClockOutInput{})
	if out.Status != ClockSignatureRequired {
		t.Fatalf("expected signature_required, got %s", out.Status)
	}
	if active, _ := store.ActiveCard(ctx, "drv-1"); active == nil || active.ClockOutTime != nil {
		t.Fatalf("expected card untouched after signature_required")
	}

	// 缺 post-trip 检查：硬性门槛
	out, _ = svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "John"})
	if out.Status != ClockPostTripRequired {
		t.Fatalf("expected post_trip_required, got %s", out.Status)
	}
	if active, _ := store.ActiveCard(ctx, "drv-1"); active == nil || active.ClockOutTime != nil {
		t.Fatalf("expected clock_out_time still null after post_trip_required")
	}

	// 补上检查后成功
	if ins, _ := svc.RecordInspection(ctx, "drv-1", InspectionInput{Kind: InspectionPostTrip}); ins.Status != ClockSuccess {
		t.Fatalf("record inspection failed: %s", ins.Status)
	}
	if got := store.inspections[started.TimeCard.ID]; len(got) != 1 || got[0] != InspectionPostTrip {
		t.Fatalf("expected post_trip inspection on card, got %v", got)
	}
	out, _ = svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "John"})
	if out.Status != ClockSuccess {
		t.Fatalf("expected success after inspection, got %s", out.Status)
	}
}

func TestFifteenHourWarning(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()

	if out, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{}); out.Status != ClockSuccess {
		t.Fatalf("clock in failed: %s", out.Status)
	}
	clock.Advance(16 * time.Hour)

	out, err := svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "John"})
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if out.Status != ClockSuccess {
		t.Fatalf("warning must not block clock out, got %s", out.Status)
	}
	if len(out.Warnings) != 1 || !strings.Contains(out.Warnings[0], "15-hour") {
		t.Fatalf("expected 15-hour warning, got %v", out.Warnings)
	}
}

func TestSeventyHourWarning(t *testing.T) {
	run := func(t *testing.T, shift time.Duration, wantWarning bool) {
		store := newFakeStore()
		clock := newTestClock()
		svc := newTestService(t, store, clock)
		ctx := context.Background()

		// 本窗口内已有 4 个完成班次，合计 68 小时
		for i, h := range []float64{17, 17, 17, 17} {
			in := clock.Now().Add(-time.Duration(i+2) * 24 * time.Hour)
			out := in.Add(time.Duration(h * float64(time.Hour)))
			store.cards = append(store.cards, &TimeCard{
				ID:           fmt.Sprintf("old-%d", i),
				DriverID:     "drv-1",
				Date:         calendarDate(in, svc.DisplayLocation()),
				ClockInTime:  in,
				ClockOutTime: &out,
				OnDutyHours:  h,
				Status:       StatusCompleted,
			})
		}

		if out, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{}); out.Status != ClockSuccess {
			t.Fatalf("clock in failed: %s", out.Status)
		}
		clock.Advance(shift)
		out, err := svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "John"})
		if err != nil {
			t.Fatalf("ClockOut: %v", err)
		}
		if out.Status != ClockSuccess {
			t.Fatalf("expected success, got %s", out.Status)
		}
		has70 := false
		for _, w := range out.Warnings {
			if strings.Contains(w, "70-hour") {
				has70 = true
			}
		}
		if has70 != wantWarning {
			t.Fatalf("shift=%v want70Warning=%v got warnings=%v", shift, wantWarning, out.Warnings)
		}
	}

	t.Run("68+3 warns", func(t *testing.T) { run(t, 3*time.Hour, true) })
	t.Run("68+1 clean", func(t *testing.T) { run(t, 1*time.Hour, false) })
}

func TestStaleShiftAutoClose(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()
	loc := svc.DisplayLocation()

	// 前天 08:00 上岗后一直没收卡
	staleIn := clock.Now().Add(-48 * time.Hour)
	stale := &TimeCard{
		ID:          "stale-1",
		DriverID:    "drv-1",
		Date:        calendarDate(staleIn, loc),
		ClockInTime: staleIn,
		Status:      StatusOnDuty,
	}
	store.cards = append(store.cards, stale)

	out, err := svc.ClockIn(ctx, "drv-1", ClockInInput{})
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if out.Status != ClockSuccess {
		t.Fatalf("expected success after auto-close, got %s (%s)", out.Status, out.Message)
	}
	if out.AutoClosed == nil {
		t.Fatalf("expected auto-closed card in outcome")
	}
	if out.AutoClosed.Status != StatusAutoClosed {
		t.Fatalf("expected auto_closed status, got %s", out.AutoClosed.Status)
	}
	if out.AutoClosed.ClockOutTime == nil {
		t.Fatalf("expected non-null clock out on auto-closed card")
	}
	if out.AutoClosed.DriverSignature != SystemAutoCloseSignature {
		t.Fatalf("expected system signature, got %s", out.AutoClosed.DriverSignature)
	}
	// 补卡下岗时间 = 班次日期当天 23:59:59（展示时区）
	wantEnd := dateEndInstant(stale.Date, loc).UTC()
	if !out.AutoClosed.ClockOutTime.Equal(wantEnd) {
		t.Fatalf("expected end-of-day close %v, got %v", wantEnd, out.AutoClosed.ClockOutTime)
	}
	if store.activeCount("drv-1") != 1 {
		t.Fatalf("expected exactly one active card after new clock in")
	}
}

func TestIncompletePreviousRequiresResolution(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()

	// 昨天 16:00 PDT 上岗，距今 16 小时 < 24 小时
	staleIn := clock.Now().Add(-16 * time.Hour)
	store.cards = append(store.cards, &TimeCard{
		ID:          "stale-1",
		DriverID:    "drv-1",
		Date:        calendarDate(staleIn, svc.DisplayLocation()),
		ClockInTime: staleIn,
		Status:      StatusOnDuty,
	})

	out, err := svc.ClockIn(ctx, "drv-1", ClockInInput{})
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if out.Status != ClockIncompletePrevious {
		t.Fatalf("expected incomplete_previous, got %s", out.Status)
	}
	if len(store.cards) != 1 {
		t.Fatalf("expected no new card, got %d", len(store.cards))
	}

	// forceClockOut 后系统补卡并放行
	out, err = svc.ClockIn(ctx, "drv-1", ClockInInput{ForceClockOut: true})
	if err != nil {
		t.Fatalf("ClockIn force: %v", err)
	}
	if out.Status != ClockSuccess || out.AutoClosed == nil {
		t.Fatalf("expected forced auto-close + success, got %s", out.Status)
	}
	if store.activeCount("drv-1") != 1 {
		t.Fatalf("invariant violated: %d active cards", store.activeCount("drv-1"))
	}
}

func TestRecordInspectionBranches(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()

	// 非法类型是调用方错误，不是工作流分支
	if _, err := svc.RecordInspection(ctx, "drv-1", InspectionInput{Kind: "mid_trip"}); err == nil {
		t.Fatalf("expected error for invalid inspection type")
	}

	// 未上岗
	out, err := svc.RecordInspection(ctx, "drv-1", InspectionInput{Kind: InspectionPostTrip})
	if err != nil {
		t.Fatalf("RecordInspection: %v", err)
	}
	if out.Status != ClockNotClockedIn {
		t.Fatalf("expected not_clocked_in, got %s", out.Status)
	}

	// 非驾驶班次没有车可检
	if in, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{}); in.Status != ClockSuccess {
		t.Fatalf("clock in failed: %s", in.Status)
	}
	out, _ = svc.RecordInspection(ctx, "drv-1", InspectionInput{Kind: InspectionPostTrip})
	if out.Status != ClockVehicleRequired {
		t.Fatalf("expected vehicle_required, got %s", out.Status)
	}
	if len(store.inspections) != 0 {
		t.Fatalf("expected no inspection rows, got %v", store.inspections)
	}
}

func TestWeeklyReport(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()

	report, err := svc.WeeklyReport(ctx, "drv-1")
	if err != nil {
		t.Fatalf("WeeklyReport: %v", err)
	}
	if report.WeekStart != "2026-03-08" {
		t.Fatalf("expected Sunday week start 2026-03-08, got %s", report.WeekStart)
	}
	if report.TotalOnDutyHours != 0 || report.RemainingHours != 70 {
		t.Fatalf("expected empty week, got %+v", report)
	}

	if in, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{}); in.Status != ClockSuccess {
		t.Fatalf("clock in failed: %s", in.Status)
	}
	clock.Advance(8 * time.Hour)
	if out, _ := svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "John"}); out.Status != ClockSuccess {
		t.Fatalf("clock out failed: %s", out.Status)
	}

	report, err = svc.WeeklyReport(ctx, "drv-1")
	if err != nil {
		t.Fatalf("WeeklyReport: %v", err)
	}
	if report.TotalOnDutyHours != 8 {
		t.Fatalf("expected 8 rolled-up hours, got %v", report.TotalOnDutyHours)
	}
	if report.RemainingHours != 62 {
		t.Fatalf("expected 62 remaining, got %v", report.RemainingHours)
	}
	if report.WeeklyLimitHours != 70 {
		t.Fatalf("expected 70-hour limit, got %v", report.WeeklyLimitHours)
	}
}

func TestWeeklyRollupFailureDoesNotFailClockOut(t *testing.T) {
	store := newFakeStore()
	store.weeklyErr = fmt.Errorf("aggregate table is on fire")
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()

	if out, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{}); out.Status != ClockSuccess {
		t.Fatalf("clock in failed: %s", out.Status)
	}
	clock.Advance(5 * time.Hour)
	out, err := svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "John"})
	if err != nil {
		t.Fatalf("expected clock out to survive rollup failure: %v", err)
	}
	if out.Status != ClockSuccess {
		t.Fatalf("expected success, got %s", out.Status)
	}
	if out.TimeCard.Status != StatusCompleted {
		t.Fatalf("time card must still be completed")
	}
}

func TestStatusQuery(t *testing.T) {
	store := newFakeStore()
	clock := newTestClock()
	svc := newTestService(t, store, clock)
	ctx := context.Background()

	report, err := svc.Status(ctx, "drv-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if report.Status != DutyNotClockedIn {
		t.Fatalf("expected not_clocked_in, got %s", report.Status)
	}

	if out, _ := svc.ClockIn(ctx, "drv-1", ClockInInput{}); out.Status != ClockSuccess {
		t.Fatalf("clock in failed: %s", out.Status)
	}
	clock.Advance(3 * time.Hour)

	report, _ = svc.Status(ctx, "drv-1")
	if report.Status != DutyClockedIn {
		t.Fatalf("expected clocked_in, got %s", report.Status)
	}
	if report.ElapsedHours != 3 {
		t.Fatalf("expected live elapsed 3h, got %v", report.ElapsedHours)
	}

	if out, _ := svc.ClockOut(ctx, "drv-1", ClockOutInput{Signature: "John"}); out.Status != ClockSuccess {
		t.Fatalf("clock out failed: %s", out.Status)
	}

	// 当天收过卡：clocked_out + 摘要
	report, _ = svc.Status(ctx, "drv-1")
	if report.Status != DutyClockedOut {
		t.Fatalf("expected clocked_out, got %s", report.Status)
	}
	if report.Summary == nil || report.Summary.TotalHours != 3 {
		t.Fatalf("expected summary with 3 hours, got %+v", report.Summary)
	}

	// 第二天回到 not_clocked_in
	clock.Advance(24 * time.Hour)
	report, _ = svc.Status(ctx, "drv-1")
	if report.Status != DutyNotClockedIn {
		t.Fatalf("expected not_clocked_in next day, got %s", report.Status)
	}
}
