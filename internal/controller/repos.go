package controller

import (
	"gorm.io/gorm"

	"plus_admin_v1/internal/model"
	"plus_admin_v1/internal/repository"
)

func userRepo(db *gorm.DB) repository.ModelRepository[model.SysUser] {
	return repository.NewUserRepository(db)
}

func customerRepo(db *gorm.DB) repository.ModelRepository[model.SysCustomer] {
	return repository.NewCustomerRepository(db)
}

func grantRepo(db *gorm.DB) repository.ModelRepository[model.UriGrant] {
	return repository.NewUriGrantRepository(db)
}
