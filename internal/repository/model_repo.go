package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== ModelRepository 通用模型仓库 ====================

// Filter 查询条件
// Eq 中值为 []any 时按 IN 查询；Like 同一列的多个值按 OR 匹配；Page 从 1 开始，Page 与 Limit 均大于 0 时分页
type Filter struct {
	Eq    map[string]any
	Like  map[string][]string
	Page  int
	Limit int
}

// Paged 是否分页
func (f Filter) Paged() bool {
	return f.Page > 0 && f.Limit > 0
}

// ModelRepository 通用模型仓库接口
// 查询类方法只针对有效记录，HardDelete 针对全部记录
type ModelRepository[T any] interface {
	Query(ctx context.Context, filter Filter) ([]T, int64, error)
	GetLive(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, obj *T) error
	Save(ctx context.Context, obj *T) error
	SoftDelete(ctx context.Context, id int64, deleted bool) (int64, error)
	HardDelete(ctx context.Context, id int64) (int64, error)
}

// ==================== 实现 ====================

type modelRepository[T any] struct {
	db *gorm.DB
}

// NewModelRepository 创建通用模型仓库
func NewModelRepository[T any](db *gorm.DB) ModelRepository[T] {
	return &modelRepository[T]{db: db}
}

// live 有效记录
func (r *modelRepository[T]) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T)).Where("is_deleted = ?", 0)
}

// Query 条件查询，按更新时间倒序，同一时间按插入顺序
func (r *modelRepository[T]) Query(ctx context.Context, filter Filter) ([]T, int64, error) {
	query := r.live(ctx)

	for _, col := range sortedKeys(filter.Eq) {
		column := clause.Column{Name: col}
		if values, ok := filter.Eq[col].([]any); ok {
			query = query.Where(clause.IN{Column: column, Values: values})
			continue
		}
		query = query.Where(clause.Eq{Column: column, Value: filter.Eq[col]})
	}
	for _, col := range sortedKeys(filter.Like) {
		likes := make([]clause.Expression, 0, len(filter.Like[col]))
		for _, v := range filter.Like[col] {
			likes = append(likes, clause.Like{Column: clause.Column{Name: col}, Value: "%" + v + "%"})
		}
		if len(likes) > 0 {
			query = query.Where(clause.Or(likes...))
		}
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if filter.Paged() {
		if err := query.Count(&total).Error; err != nil {
			return nil, 0, err
		}
		query = query.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	list := make([]T, 0)
	err := query.
		Order("update_time DESC").
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}

	if !filter.Paged() {
		total = int64(len(list))
	}
	return list, total, nil
}

// GetLive 根据 ID 获取有效记录，不存在返回 nil
func (r *modelRepository[T]) GetLive(ctx context.Context, id int64) (*T, error) {
	var obj T
	err := r.live(ctx).Where("id = ?", id).First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// Create 创建记录
func (r *modelRepository[T]) Create(ctx context.Context, obj *T) error {
	return r.db.WithContext(ctx).Create(obj).Error
}

// Save 保存全部字段
func (r *modelRepository[T]) Save(ctx context.Context, obj *T) error {
	return r.db.WithContext(ctx).Save(obj).Error
}

// SoftDelete 软删除，deleted 为 false 时恢复
// 删除标记置为记录自身 ID，返回影响行数
func (r *modelRepository[T]) SoftDelete(ctx context.Context, id int64, deleted bool) (int64, error) {
	var flag any = 0
	if deleted {
		flag = gorm.Expr("id")
	}

	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_deleted":  flag,
			"update_time": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// HardDelete 物理删除，返回影响行数
func (r *modelRepository[T]) HardDelete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	return result.RowsAffected, result.Error
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
