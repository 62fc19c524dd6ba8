package errcode

import (
	"errors"
	"fmt"
)

// ==================== 响应码 ====================

// Code 业务响应码
type Code string

const (
	OK Code = "0"

	// 参数类 41xx
	ParamErr    Code = "4100"
	RequiredErr Code = "4101"
	ValidErr    Code = "4102"
	EnumErr     Code = "4103"

	// 认证类 42xx
	AuthErr        Code = "4200"
	UserNotExist   Code = "4201"
	PwdErr         Code = "4202"
	NotActive      Code = "4203"
	JWTDecodeErr   Code = "4204"
	JWTExpiredErr  Code = "4205"
	JWTImmatureErr Code = "4206"
	JWTFormatErr   Code = "4207"

	// 权限类 43xx
	PermErr  Code = "4300"
	NotLogin Code = "4301"
	NoPerm   Code = "4302"

	// 数据类 44xx
	DataErr   Code = "4400"
	NoData    Code = "4401"
	ExistData Code = "4402"
	DBErr     Code = "4403"

	// 系统类 45xx
	SysErr    Code = "4500"
	ReqErr    Code = "4501"
	IPErr     Code = "4502"
	MethodErr Code = "4503"
	InnerErr  Code = "4504"
	IOErr     Code = "4505"

	ThirdErr   Code = "4600"
	UnknownErr Code = "4700"
)

var messages = map[Code]string{
	OK: "成功",

	ParamErr:    "参数错误",
	RequiredErr: "必填参数缺失",
	ValidErr:    "参数校验错误",
	EnumErr:     "参数枚举错误",

	AuthErr:        "认证失败",
	UserNotExist:   "用户不存在",
	PwdErr:         "密码错误",
	NotActive:      "用户未启用",
	JWTDecodeErr:   "token解析失败",
	JWTExpiredErr:  "token超时",
	JWTImmatureErr: "token未生效",
	JWTFormatErr:   "token格式错误",

	PermErr:  "权限错误",
	NotLogin: "用户未登录",
	NoPerm:   "用户无权限",

	DataErr:   "数据错误",
	NoData:    "数据不存在",
	ExistData: "数据已存在",
	DBErr:     "数据库错误",

	SysErr:    "系统错误",
	ReqErr:    "非法请求或请求次数受限",
	IPErr:     "IP受限",
	MethodErr: "请求方法错误",
	InnerErr:  "内部错误",
	IOErr:     "文件读写错误",

	ThirdErr:   "三方系统错误",
	UnknownErr: "未知错误",
}

// Known 是否为已定义的响应码
func (c Code) Known() bool {
	_, ok := messages[c]
	return ok
}

// Msg 响应码对应的固定提示
func (c Code) Msg() string {
	if msg, ok := messages[c]; ok {
		return msg
	}
	return messages[UnknownErr]
}

// Normalize 未定义的响应码统一归为 UnknownErr
func Normalize(c Code) Code {
	if c.Known() {
		return c
	}
	return UnknownErr
}

// ==================== 业务错误 ====================

// Error 携带响应码的业务错误
type Error struct {
	Code Code
	Desc string
	Err  error
}

func (e *Error) Error() string {
	desc := e.Desc
	if desc == "" {
		desc = e.Code.Msg()
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, desc, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, desc)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建业务错误，desc 为空时使用响应码默认提示
func New(code Code, format string, args ...any) *Error {
	desc := format
	if len(args) > 0 {
		desc = fmt.Sprintf(format, args...)
	}
	return &Error{Code: Normalize(code), Desc: desc}
}

// Wrap 包装底层错误
func Wrap(code Code, err error, desc string) *Error {
	return &Error{Code: Normalize(code), Desc: desc, Err: err}
}

// From 提取错误中的业务错误
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is 判断错误是否携带指定响应码
func Is(err error, code Code) bool {
	if e, ok := From(err); ok {
		return e.Code == code
	}
	return false
}
