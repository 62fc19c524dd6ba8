package model

// UriGrant 接口授权，非管理员按 用户名+方法+路径 精确匹配
type UriGrant struct {
	ValidateModel
	Username string `gorm:"size:64;not null;index;comment:用户名" json:"username"`
	Method   string `gorm:"size:10;not null;comment:请求方法" json:"method"`
	URI      string `gorm:"column:uri;size:255;not null;comment:接口路径" json:"uri"`
}

func (UriGrant) TableName() string {
	return "sys_uri_grant"
}

func (UriGrant) LiveUniqueFields() [][]string {
	return [][]string{{"username", "method", "uri"}}
}
