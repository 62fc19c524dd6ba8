package viewset

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// ==================== 请求参数 ====================

const maxMultipartMemory = 32 << 20

// Params 请求参数
// 只出现一次的键为标量，重复出现的键为 []string
type Params map[string]any

// ParseArgs 解析 URL 查询参数
func ParseArgs(r *http.Request) Params {
	return fromValues(r.URL.Query())
}

// ParseData 解析请求体参数
// 表单字段与 JSON 对象合并，键冲突时以 JSON 为准；JSON 缺失或格式错误时忽略
func ParseData(c *gin.Context) Params {
	params := Params{}
	if c.Request.Body == nil {
		return params
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return params
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	contentType := c.ContentType()
	if contentType == gin.MIMEPOSTForm || contentType == gin.MIMEMultipartPOSTForm {
		if contentType == gin.MIMEMultipartPOSTForm {
			_ = c.Request.ParseMultipartForm(maxMultipartMemory)
		} else {
			_ = c.Request.ParseForm()
		}
		for k, v := range fromValues(c.Request.PostForm) {
			params[k] = v
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return params
	}
	var payload map[string]any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return params
	}
	for k, v := range payload {
		params[k] = v
	}
	return params
}

func fromValues(values map[string][]string) Params {
	params := make(Params, len(values))
	for k, v := range values {
		switch len(v) {
		case 0:
		case 1:
			params[k] = v[0]
		default:
			params[k] = append([]string(nil), v...)
		}
	}
	return params
}

// ==================== 取值 ====================

// Has 键存在且非 nil
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Supplied 键存在且不为 nil 或空字符串
func (p Params) Supplied(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Get 取值
func (p Params) Get(key string) any {
	return p[key]
}

// String 取字符串
func (p Params) String(key string) string {
	return cast.ToString(normalize(p[key]))
}

// Int64 取整数
func (p Params) Int64(key string) (int64, bool) {
	if !p.Supplied(key) {
		return 0, false
	}
	v, err := cast.ToInt64E(normalize(p[key]))
	return v, err == nil
}

// Int 取整数
func (p Params) Int(key string) (int, bool) {
	v, ok := p.Int64(key)
	return int(v), ok
}

// Redacted 日志用副本，隐去密码类字段
func (p Params) Redacted() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		if strings.Contains(strings.ToLower(k), "password") {
			out[k] = "******"
			continue
		}
		out[k] = v
	}
	return out
}

// normalize json.Number 转为字符串后交给 cast
func normalize(v any) any {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return v
}
