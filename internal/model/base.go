package model

import "time"

// ValidateModel 业务表公共字段
// IsDeleted 为 0 表示有效，软删除后置为记录自身 ID
type ValidateModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreateUser string    `gorm:"size:64;comment:创建人" json:"create_user"`
	UpdateUser string    `gorm:"size:64;comment:更新人" json:"update_user"`
	CreateTime time.Time `gorm:"autoCreateTime;comment:创建时间" json:"create_time"`
	UpdateTime time.Time `gorm:"autoUpdateTime;index;comment:更新时间" json:"update_time"`
	IsDeleted  int64     `gorm:"not null;default:0;index;comment:删除标记" json:"is_deleted"`
	Remark     string    `gorm:"size:255;comment:备注" json:"remark"`
}

// Live 是否未被软删除
func (m *ValidateModel) Live() bool {
	return m.IsDeleted == 0
}

// LiveUnique 在有效记录范围内唯一的字段组
// 迁移时会追加 is_deleted 建立联合唯一索引
type LiveUnique interface {
	LiveUniqueFields() [][]string
}
