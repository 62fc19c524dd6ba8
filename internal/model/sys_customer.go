package model

// 客户类型
const (
	CustomerInternal = 1
	CustomerExternal = 2
)

// CustomerTypChoices 客户类型枚举
var CustomerTypChoices = map[int64]string{
	CustomerInternal: "内部客户",
	CustomerExternal: "外部客户",
}

// SysCustomer 客户
type SysCustomer struct {
	ValidateModel
	Name string `gorm:"size:128;not null;comment:客户名称" json:"name"`
	SN   string `gorm:"size:64;not null;comment:客户编号" json:"sn"`
	Typ  int    `gorm:"not null;default:1;comment:客户类型" json:"typ"`
}

func (SysCustomer) TableName() string {
	return "sys_customer"
}

func (SysCustomer) LiveUniqueFields() [][]string {
	return [][]string{{"sn"}}
}
