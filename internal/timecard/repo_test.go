package timecard

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockRepo 用 sqlmock 顶替 MySQL 连接，校验 Repo 发出的 SQL 形状。
func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return NewRepo(gormDB), mock
}

func TestActiveCardLocksRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "driver_id", "date", "clock_in_time", "status"}).
		AddRow("tc-1", "drv-1", now.Truncate(24*time.Hour), now, StatusOnDuty)

	// 活动时卡查询必须带 FOR UPDATE，否则并发上岗会双双通过检查
	mock.ExpectQuery("SELECT (.+) FROM `time_cards` WHERE driver_id = (.+) AND clock_out_time IS NULL (.+)FOR UPDATE").
		WillReturnRows(rows)

	tc, err := repo.ActiveCard(context.Background(), "drv-1")
	if err != nil {
		t.Fatalf("ActiveCard: %v", err)
	}
	if tc == nil || tc.ID != "tc-1" {
		t.Fatalf("unexpected card: %+v", tc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActiveCardAbsentIsNilNil(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM `time_cards`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tc, err := repo.ActiveCard(context.Background(), "drv-1")
	if err != nil {
		t.Fatalf("expected nil error for missing card, got %v", err)
	}
	if tc != nil {
		t.Fatalf("expected nil card, got %+v", tc)
	}
}

func TestCompletedHoursSinceAggregates(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(on_duty_hours\\), 0\\) FROM `time_cards`").
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(SUM(on_duty_hours), 0)"}).AddRow(42.5))

	total, err := repo.CompletedHoursSince(context.Background(), "drv-1", time.Now().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("CompletedHoursSince: %v", err)
	}
	if total != 42.5 {
		t.Fatalf("expected 42.5, got %v", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddWeeklyHoursUpserts(t *testing.T) {
	repo, mock := newMockRepo(t)

	// 冲突路径必须是累加：ON DUPLICATE KEY UPDATE ... total_on_duty_hours + ?
	mock.ExpectExec("INSERT INTO `weekly_hos` (.+)ON DUPLICATE KEY UPDATE (.+)total_on_duty_hours \\+ \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	week := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	if err := repo.AddWeeklyHours(context.Background(), "drv-1", week, 8.5); err != nil {
		t.Fatalf("AddWeeklyHours: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHasInspection(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `inspections`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	ok, err := repo.HasInspection(context.Background(), "tc-1", InspectionPostTrip)
	if err != nil {
		t.Fatalf("HasInspection: %v", err)
	}
	if !ok {
		t.Fatalf("expected inspection to exist")
	}
}

func TestNilRepoIsSafe(t *testing.T) {
	var repo *Repo
	if _, err := repo.ActiveCard(context.Background(), "drv-1"); err == nil {
		t.Fatalf("expected error from nil repo")
	}
	if err := repo.CreateCard(context.Background(), &TimeCard{}); err == nil {
		t.Fatalf("expected error from nil repo")
	}
}
