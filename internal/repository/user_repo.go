package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"plus_admin_v1/internal/model"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库接口
type UserRepository interface {
	ModelRepository[model.SysUser]
	GetByID(ctx context.Context, id int64) (*model.SysUser, error)
	GetByUsername(ctx context.Context, username string) (*model.SysUser, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	SetCustomer(ctx context.Context, id, customerID int64) error
}

type userRepository struct {
	ModelRepository[model.SysUser]
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		ModelRepository: NewModelRepository[model.SysUser](db),
		db:              db,
	}
}

// GetByID 根据 ID 获取有效用户
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.SysUser, error) {
	return r.GetLive(ctx, id)
}

// GetByUsername 根据用户名获取有效用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.WithContext(ctx).
		Where("username = ? AND is_deleted = ?", username, 0).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin 更新最后登录时间
func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.SysUser{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

// SetCustomer 绑定所属客户
func (r *userRepository) SetCustomer(ctx context.Context, id, customerID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.SysUser{}).
		Where("id = ? AND is_deleted = ?", id, 0).
		Update("customer_id", customerID).Error
}
