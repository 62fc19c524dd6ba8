package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plus_admin_v1/internal/model"
)

// CustomerRepository 客户仓库接口
type CustomerRepository interface {
	ModelRepository[model.SysCustomer]
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.SysCustomer, error)
	FindLive(ctx context.Context, name, sn string, typ int) (*model.SysCustomer, error)
}

type customerRepository struct {
	ModelRepository[model.SysCustomer]
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{
		ModelRepository: NewModelRepository[model.SysCustomer](db),
		db:              db,
	}
}

// GetByIDs 批量获取有效客户
func (r *customerRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.SysCustomer, error) {
	result := make(map[int64]*model.SysCustomer, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var list []model.SysCustomer
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", ids, 0).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	for i := range list {
		result[list[i].ID] = &list[i]
	}
	return result, nil
}

// FindLive 按名称、编号、类型查找有效客户，typ 为 0 时不限类型
func (r *customerRepository) FindLive(ctx context.Context, name, sn string, typ int) (*model.SysCustomer, error) {
	query := r.db.WithContext(ctx).Where("name = ? AND sn = ? AND is_deleted = ?", name, sn, 0)
	if typ > 0 {
		query = query.Where("typ = ?", typ)
	}

	var customer model.SysCustomer
	err := query.First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
