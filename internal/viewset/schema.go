package viewset

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"plus_admin_v1/internal/errcode"
)

// ==================== 字段定义 ====================

// FieldType 字段类型
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeBool
	TypeFloat
)

// Field 资源字段
type Field struct {
	Name           string
	Type           FieldType
	Query          bool             // 可作为查询条件
	Create         bool             // 创建时可写
	Update         bool             // 更新时可写
	CreateRequired bool             // 创建必填
	UpdateRequired bool             // 更新必填
	Like           bool             // 查询时模糊匹配
	Choices        map[int64]string // 枚举值 -> 显示名
	Upper          bool             // 字符串转大写
}

// Schema 资源字段表
type Schema struct {
	fields []Field
	byName map[string]Field
}

// NewSchema 创建字段表
func NewSchema(fields ...Field) *Schema {
	s := &Schema{fields: fields, byName: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if f.CreateRequired {
			f.Create = true
		}
		if f.UpdateRequired {
			f.Update = true
		}
		if f.Like {
			f.Query = true
		}
		s.byName[f.Name] = f
	}
	s.fields = lo.Map(fields, func(f Field, _ int) Field { return s.byName[f.Name] })
	return s
}

// Field 按名称取字段
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// QueryFields 可查询字段
func (s *Schema) QueryFields() []Field {
	return lo.Filter(s.fields, func(f Field, _ int) bool { return f.Query })
}

// CreateFields 可创建字段
func (s *Schema) CreateFields() []Field {
	return lo.Filter(s.fields, func(f Field, _ int) bool { return f.Create })
}

// UpdateFields 可更新字段，不含 id
func (s *Schema) UpdateFields() []Field {
	return lo.Filter(s.fields, func(f Field, _ int) bool { return f.Update && f.Name != "id" })
}

// ChoiceFields 枚举字段
func (s *Schema) ChoiceFields() []Field {
	return lo.Filter(s.fields, func(f Field, _ int) bool { return len(f.Choices) > 0 })
}

// ==================== 校验 ====================

// RequireFields 检查必填字段
func RequireFields(params Params, names ...string) error {
	missing := lo.Filter(names, func(name string, _ int) bool { return !params.Supplied(name) })
	if len(missing) > 0 {
		return errcode.New(errcode.RequiredErr, "缺少必填参数: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Coerce 按字段类型转换并校验枚举
func (f Field) Coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw := normalize(v)

	var (
		out any
		err error
	)
	switch f.Type {
	case TypeInt:
		out, err = cast.ToInt64E(raw)
	case TypeBool:
		out, err = cast.ToBoolE(raw)
	case TypeFloat:
		out, err = cast.ToFloat64E(raw)
	default:
		var s string
		s, err = cast.ToStringE(raw)
		if f.Upper {
			s = strings.ToUpper(s)
		}
		out = s
	}
	if err != nil {
		return nil, errcode.Wrap(errcode.ValidErr, err, fmt.Sprintf("参数 %s 格式错误", f.Name))
	}

	if len(f.Choices) > 0 {
		key, err := cast.ToInt64E(out)
		if err != nil {
			return nil, errcode.New(errcode.EnumErr, "参数 %s 取值错误", f.Name)
		}
		if _, ok := f.Choices[key]; !ok {
			return nil, errcode.New(errcode.EnumErr, "参数 %s 取值错误: %v", f.Name, out)
		}
	}
	return out, nil
}

// CoerceMany 转换多个取值，用于 IN 查询
func (f Field) CoerceMany(v any) ([]any, bool, error) {
	var items []any
	switch vals := v.(type) {
	case []string:
		items = lo.Map(vals, func(s string, _ int) any { return s })
	case []any:
		items = vals
	default:
		return nil, false, nil
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		c, err := f.Coerce(item)
		if err != nil {
			return nil, true, err
		}
		out = append(out, c)
	}
	return out, true, nil
}

// Label 枚举显示名
func (f Field) Label(v any) string {
	key, err := cast.ToInt64E(normalize(v))
	if err != nil {
		return ""
	}
	return f.Choices[key]
}
