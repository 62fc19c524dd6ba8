package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// 用户角色
const (
	RoleAdmin  = 1
	RoleNormal = 2
)

// UserRoleChoices 用户角色枚举
var UserRoleChoices = map[int64]string{
	RoleAdmin:  "管理员",
	RoleNormal: "普通用户",
}

// SysUser 系统用户
type SysUser struct {
	ValidateModel
	Username     string     `gorm:"size:64;not null;comment:用户名" json:"username"`
	PasswordHash string     `gorm:"size:255;not null;comment:密码哈希" json:"-"`
	Nickname     string     `gorm:"size:64;comment:昵称" json:"nickname"`
	Mobile       string     `gorm:"size:32;comment:手机号" json:"mobile"`
	CustomerID   *int64     `gorm:"index;comment:所属客户" json:"customer_id"`
	Role         int        `gorm:"not null;default:2;comment:角色" json:"role"`
	LastLogin    *time.Time `gorm:"comment:最后登录时间" json:"last_login"`
	IsActive     bool       `gorm:"not null;default:true;comment:是否启用" json:"is_active"`
}

func (SysUser) TableName() string {
	return "sys_user"
}

func (SysUser) LiveUniqueFields() [][]string {
	return [][]string{{"username"}}
}

// SetPassword 设置密码哈希
func (u *SysUser) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (u *SysUser) CheckPassword(raw string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(raw)) == nil
}

// IsAdmin 是否管理员
func (u *SysUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}
