package driver

import (
	"strings"
	"time"
)

// Driver 是 drivers 表的 GORM 模型。
// 司机即系统用户：登录后才允许访问打卡/排班接口。
type Driver struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Username      string    `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash  string    `gorm:"size:128;not null"`
	PasswordSalt  string    `gorm:"size:64;not null"`
	FullName      string    `gorm:"size:128"`
	Phone         string    `gorm:"size:32"`
	Email         string    `gorm:"size:128"`
	LicenseNumber string    `gorm:"size:64"` // CDL 驾照号，合规报表用
	Roles         string    `gorm:"size:256;not null"` // 逗号分隔，例如 "driver,admin"
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// DisplayName 报表/占用提示里展示的名字，没填全名时退回用户名。
func (d Driver) DisplayName() string {
	if strings.TrimSpace(d.FullName) != "" {
		return d.FullName
	}
	return d.Username
}

func (d Driver) RolesSlice() []string {
	if strings.TrimSpace(d.Roles) == "" {
		return nil
	}
	parts := strings.Split(d.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func RolesJoin(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return strings.Join(out, ",")
}
