package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"plus_admin_v1/internal/model"
)

// UriGrantRepository 接口授权仓库
type UriGrantRepository interface {
	ModelRepository[model.UriGrant]
	HasGrant(ctx context.Context, username, method, uri string) (bool, error)
}

type uriGrantRepository struct {
	ModelRepository[model.UriGrant]
	db *gorm.DB
}

// NewUriGrantRepository 创建接口授权仓库
func NewUriGrantRepository(db *gorm.DB) UriGrantRepository {
	return &uriGrantRepository{
		ModelRepository: NewModelRepository[model.UriGrant](db),
		db:              db,
	}
}

// HasGrant 是否存在 用户名+方法+路径 的有效授权
func (r *uriGrantRepository) HasGrant(ctx context.Context, username, method, uri string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UriGrant{}).
		Where("username = ? AND method = ? AND uri = ? AND is_deleted = ?", username, strings.ToUpper(method), uri, 0).
		Count(&count).Error
	return count > 0, err
}
