package dto

import "plus_admin_v1/internal/errcode"

// ==================== 统一响应 ====================

// Response 统一响应信封
type Response struct {
	Code  errcode.Code `json:"code" swaggertype:"string" example:"0"`
	Msg   string       `json:"msg" example:"成功"`
	Desc  string       `json:"desc" example:"成功"`
	Data  any          `json:"data"`
	Total *int64       `json:"total,omitempty"`
}

// NewResponse 构造响应，未知响应码归为 4700，desc 为空时取 msg
func NewResponse(code errcode.Code, desc string, data any) *Response {
	code = errcode.Normalize(code)
	msg := code.Msg()
	if desc == "" {
		desc = msg
	}
	return &Response{Code: code, Msg: msg, Desc: desc, Data: data}
}

// OK 成功响应
func OK(desc string, data any) *Response {
	return NewResponse(errcode.OK, desc, data)
}

// Fail 失败响应
func Fail(code errcode.Code, desc string) *Response {
	return NewResponse(code, desc, nil)
}

// FromError 业务错误转响应
func FromError(e *errcode.Error) *Response {
	return NewResponse(e.Code, e.Desc, nil)
}

// WithTotal 设置列表总数
func (r *Response) WithTotal(total int64) *Response {
	r.Total = &total
	return r
}
