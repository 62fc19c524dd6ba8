package viewset

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/repository"
)

// ==================== ModelViewSet 通用增删改查 ====================

// ModelViewSet 基于字段表的通用增删改查
type ModelViewSet[T any] struct {
	*View
	Schema *Schema

	// NewRepo 以当前事务创建仓库
	NewRepo func(db *gorm.DB) repository.ModelRepository[T]
	// Serialize 自定义输出，为空时输出模型 JSON 字段并追加枚举显示名
	Serialize func(c *Context, list []T) ([]map[string]any, error)
	// BeforeSave 创建和更新写库前调用，values 为已校验的参数
	BeforeSave func(c *Context, obj *T, values map[string]any, creating bool) error
}

// NewModelViewSet 创建通用增删改查
func NewModelViewSet[T any](view *View, schema *Schema) *ModelViewSet[T] {
	return &ModelViewSet[T]{
		View:    view,
		Schema:  schema,
		NewRepo: repository.NewModelRepository[T],
	}
}

func (s *ModelViewSet[T]) repo(c *Context) repository.ModelRepository[T] {
	return s.NewRepo(c.DB())
}

// GetQuery 按 URL 参数查询
func (s *ModelViewSet[T]) GetQuery(c *Context) (*dto.Response, error) {
	return s.query(c, c.Args())
}

// PostQuery 按请求体查询
func (s *ModelViewSet[T]) PostQuery(c *Context) (*dto.Response, error) {
	return s.query(c, c.Data())
}

func (s *ModelViewSet[T]) query(c *Context, params Params) (*dto.Response, error) {
	filter, err := s.BuildFilter(params)
	if err != nil {
		return nil, err
	}

	list, total, err := s.repo(c).Query(c.Ctx(), filter)
	if err != nil {
		return nil, err
	}
	data, err := s.serialize(c, list)
	if err != nil {
		return nil, err
	}
	return dto.OK("", data).WithTotal(total), nil
}

// BuildFilter 由参数构造查询条件
// 空字符串视为未传；重复键按 IN 查询，模糊字段按 OR 匹配；offset 与 limit 均为正整数时分页
func (s *ModelViewSet[T]) BuildFilter(params Params) (repository.Filter, error) {
	filter := repository.Filter{Eq: map[string]any{}, Like: map[string][]string{}}

	for _, f := range s.Schema.QueryFields() {
		if !params.Supplied(f.Name) {
			continue
		}
		raw := params[f.Name]

		values, many, err := f.CoerceMany(raw)
		if err != nil {
			return filter, err
		}
		if many {
			if len(values) == 0 {
				continue
			}
			if f.Like {
				for _, v := range values {
					if str := cast.ToString(v); str != "" {
						filter.Like[f.Name] = append(filter.Like[f.Name], str)
					}
				}
				continue
			}
			filter.Eq[f.Name] = values
			continue
		}

		v, err := f.Coerce(raw)
		if err != nil {
			return filter, err
		}
		if f.Like {
			filter.Like[f.Name] = []string{cast.ToString(v)}
			continue
		}
		filter.Eq[f.Name] = v
	}

	page, okPage := params.Int("offset")
	limit, okLimit := params.Int("limit")
	if okPage && okLimit && page >= 1 && limit >= 1 {
		filter.Page = page
		filter.Limit = limit
	}
	return filter, nil
}

// Create 创建
func (s *ModelViewSet[T]) Create(c *Context) (*dto.Response, error) {
	params := c.Data()

	var required []string
	for _, f := range s.Schema.CreateFields() {
		if f.CreateRequired {
			required = append(required, f.Name)
		}
	}
	if err := RequireFields(params, required...); err != nil {
		return nil, err
	}

	values, err := s.collect(params, s.Schema.CreateFields())
	if err != nil {
		return nil, err
	}

	obj := new(T)
	if err := assign(obj, values); err != nil {
		return nil, err
	}
	if s.BeforeSave != nil {
		if err := s.BeforeSave(c, obj, values, true); err != nil {
			return nil, err
		}
	}
	if err := s.repo(c).Create(c.Ctx(), obj); err != nil {
		return nil, err
	}
	return s.one(c, obj)
}

// Update 更新
func (s *ModelViewSet[T]) Update(c *Context) (*dto.Response, error) {
	params := c.Data()

	required := []string{"id"}
	for _, f := range s.Schema.UpdateFields() {
		if f.UpdateRequired {
			required = append(required, f.Name)
		}
	}
	if err := RequireFields(params, required...); err != nil {
		return nil, err
	}
	id, err := requireID(params)
	if err != nil {
		return nil, err
	}

	repo := s.repo(c)
	obj, err := repo.GetLive(c.Ctx(), id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errcode.New(errcode.NoData, "记录不存在: %d", id)
	}

	values, err := s.collect(params, s.Schema.UpdateFields())
	if err != nil {
		return nil, err
	}
	if err := assign(obj, values); err != nil {
		return nil, err
	}
	if s.BeforeSave != nil {
		if err := s.BeforeSave(c, obj, values, false); err != nil {
			return nil, err
		}
	}
	if err := repo.Save(c.Ctx(), obj); err != nil {
		return nil, err
	}
	return s.one(c, obj)
}

// Delete 软删除，is_deleted 为假时恢复，返回影响行数
func (s *ModelViewSet[T]) Delete(c *Context) (*dto.Response, error) {
	params := c.Data()
	if err := RequireFields(params, "id"); err != nil {
		return nil, err
	}
	id, err := requireID(params)
	if err != nil {
		return nil, err
	}

	deleted := true
	if params.Has("is_deleted") {
		deleted, err = cast.ToBoolE(normalize(params["is_deleted"]))
		if err != nil {
			return nil, errcode.Wrap(errcode.ValidErr, err, "参数 is_deleted 格式错误")
		}
	}

	n, err := s.repo(c).SoftDelete(c.Ctx(), id, deleted)
	if err != nil {
		return nil, err
	}
	return dto.OK("", n), nil
}

// AbsDelete 物理删除，返回影响行数
func (s *ModelViewSet[T]) AbsDelete(c *Context) (*dto.Response, error) {
	params := c.Data()
	if err := RequireFields(params, "id"); err != nil {
		return nil, err
	}
	id, err := requireID(params)
	if err != nil {
		return nil, err
	}

	n, err := s.repo(c).HardDelete(c.Ctx(), id)
	if err != nil {
		return nil, err
	}
	return dto.OK("", n), nil
}

// ==================== 序列化 ====================

// Represent 输出单条记录
func (s *ModelViewSet[T]) Represent(c *Context, obj *T) (map[string]any, error) {
	list, err := s.serialize(c, []T{*obj})
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

func (s *ModelViewSet[T]) one(c *Context, obj *T) (*dto.Response, error) {
	m, err := s.Represent(c, obj)
	if err != nil {
		return nil, err
	}
	return dto.OK("", m), nil
}

func (s *ModelViewSet[T]) serialize(c *Context, list []T) ([]map[string]any, error) {
	if s.Serialize != nil {
		return s.Serialize(c, list)
	}
	return ToMaps(s.Schema, list)
}

// ToMaps 模型转 map，枚举字段追加 <field>_label
func ToMaps[T any](schema *Schema, list []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(list))
	for i := range list {
		raw, err := json.Marshal(&list[i])
		if err != nil {
			return nil, err
		}
		m := map[string]any{}
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		if err := decoder.Decode(&m); err != nil {
			return nil, err
		}
		if schema != nil {
			for _, f := range schema.ChoiceFields() {
				if v, ok := m[f.Name]; ok {
					m[f.Name+"_label"] = f.Label(v)
				}
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// ==================== 辅助函数 ====================

// collect 取出允许写入的字段并转换类型
func (s *ModelViewSet[T]) collect(params Params, fields []Field) (map[string]any, error) {
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		raw, ok := params[f.Name]
		if !ok {
			continue
		}
		v, err := f.Coerce(raw)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}
	return values, nil
}

// assign 按 JSON 字段名赋值到模型
func assign(obj any, values map[string]any) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errcode.Wrap(errcode.ValidErr, err, "参数类型错误")
	}
	return nil
}

func requireID(params Params) (int64, error) {
	id, ok := params.Int64("id")
	if !ok {
		return 0, errcode.New(errcode.ValidErr, "参数 id 格式错误")
	}
	return id, nil
}
