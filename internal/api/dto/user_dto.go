package dto

import "time"

// ==================== 登录 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" form:"username" example:"admin"`
	Password string `json:"password" form:"password" example:"123456"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      map[string]any `json:"user"`
}

// ==================== 用户认证 ====================

// CertificationRequest 用户绑定客户请求
type CertificationRequest struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"某某公司"`
	SN   string `json:"sn" example:"C0001"`
	Typ  int    `json:"typ" example:"1"`
}

// ==================== 通用请求 ====================

// QueryRequest 列表查询请求，其余字段为模型过滤条件
type QueryRequest struct {
	Offset int `json:"offset" form:"offset" example:"1"`
	Limit  int `json:"limit" form:"limit" example:"20"`
}

// DeleteRequest 软删除请求
type DeleteRequest struct {
	ID        int64 `json:"id" example:"1"`
	IsDeleted *bool `json:"is_deleted" example:"true"`
}

// AbsDeleteRequest 物理删除请求
type AbsDeleteRequest struct {
	ID int64 `json:"id" example:"1"`
}
