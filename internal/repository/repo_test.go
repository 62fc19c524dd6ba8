package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/model"
)

// ==================== 测试辅助 ====================

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := model.Migrate(db); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func seedCustomers(t *testing.T, repo ModelRepository[model.SysCustomer], n int) []model.SysCustomer {
	ctx := context.Background()
	list := make([]model.SysCustomer, 0, n)
	for i := 1; i <= n; i++ {
		c := model.SysCustomer{Name: fmt.Sprintf("客户%02d", i), SN: fmt.Sprintf("SN%02d", i), Typ: 1 + i%2}
		require.NoError(t, repo.Create(ctx, &c))
		list = append(list, c)
	}
	return list
}

// ==================== 测试用例 ====================

func TestModelRepo_QueryPagination(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewModelRepository[model.SysCustomer](db)
	ctx := context.Background()
	seedCustomers(t, repo, 25)

	list, total, err := repo.Query(ctx, Filter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 10)
	assert.EqualValues(t, 25, total)

	list, total, err = repo.Query(ctx, Filter{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.EqualValues(t, 25, total)

	list, total, err = repo.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 25)
	assert.EqualValues(t, 25, total)
}

func TestModelRepo_QueryStableOrder(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewModelRepository[model.SysCustomer](db)
	ctx := context.Background()
	seedCustomers(t, repo, 8)

	first, _, err := repo.Query(ctx, Filter{})
	require.NoError(t, err)
	second, _, err := repo.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestModelRepo_QueryFilters(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewModelRepository[model.SysCustomer](db)
	ctx := context.Background()
	seedCustomers(t, repo, 12)

	list, total, err := repo.Query(ctx, Filter{Eq: map[string]any{"typ": 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	for _, c := range list {
		assert.Equal(t, 2, c.Typ)
	}

	list, _, err = repo.Query(ctx, Filter{Eq: map[string]any{"sn": []any{"SN01", "SN02", "SN99"}}})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, _, err = repo.Query(ctx, Filter{Like: map[string][]string{"name": {"客户1"}}})
	require.NoError(t, err)
	assert.Len(t, list, 3) // 10 11 12

	// 同列多个模糊值按 OR 匹配，与其他条件按 AND 组合
	list, _, err = repo.Query(ctx, Filter{Like: map[string][]string{"name": {"客户03", "客户05"}}})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, _, err = repo.Query(ctx, Filter{
		Eq:   map[string]any{"typ": 2},
		Like: map[string][]string{"name": {"客户03", "客户04"}},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Typ)
}

func TestModelRepo_SoftDelete(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewModelRepository[model.SysCustomer](db)
	ctx := context.Background()
	list := seedCustomers(t, repo, 3)
	target := list[1]

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&model.SysCustomer{}).Where("id = ?", target.ID).UpdateColumn("update_time", past).Error)

	n, err := repo.SoftDelete(ctx, target.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var raw model.SysCustomer
	require.NoError(t, db.First(&raw, target.ID).Error)
	assert.Equal(t, target.ID, raw.IsDeleted)
	assert.True(t, raw.UpdateTime.After(past))

	got, err := repo.GetLive(ctx, target.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, total, err := repo.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// 恢复
	n, err = repo.SoftDelete(ctx, target.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	got, err = repo.GetLive(ctx, target.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestModelRepo_HardDeleteAfterSoftDelete(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewModelRepository[model.SysCustomer](db)
	ctx := context.Background()
	list := seedCustomers(t, repo, 2)

	_, err := repo.SoftDelete(ctx, list[0].ID, true)
	require.NoError(t, err)

	n, err := repo.HardDelete(ctx, list[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var count int64
	db.Model(&model.SysCustomer{}).Where("id = ?", list[0].ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.SysUser{Username: "alice", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	now := time.Now()
	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, now))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)

	_, err = repo.SoftDelete(ctx, u.ID, true)
	require.NoError(t, err)
	got, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCustomerRepo_FindLive(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()
	list := seedCustomers(t, repo, 3)

	got, err := repo.FindLive(ctx, list[0].Name, list[0].SN, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, list[0].ID, got.ID)

	got, err = repo.FindLive(ctx, list[0].Name, list[0].SN, 9)
	require.NoError(t, err)
	assert.Nil(t, got)

	m, err := repo.GetByIDs(ctx, []int64{list[1].ID, list[2].ID, 999})
	require.NoError(t, err)
	assert.Len(t, m, 2)
}

func TestUriGrantRepo_HasGrant(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewUriGrantRepository(db)
	ctx := context.Background()

	g := &model.UriGrant{Username: "bob", Method: "DELETE", URI: "/user/sys_user/abs_delete"}
	require.NoError(t, repo.Create(ctx, g))

	ok, err := repo.HasGrant(ctx, "bob", "delete", "/user/sys_user/abs_delete")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasGrant(ctx, "bob", "POST", "/user/sys_user/abs_delete")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.HasGrant(ctx, "bob", "DELETE", "/user/sys_user/abs_delete/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClassifyStorageError(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.SysCustomer{Name: "a", SN: "dup"}))
	err := repo.Create(ctx, &model.SysCustomer{Name: "b", SN: "dup"})
	require.Error(t, err)
	assert.True(t, IsDuplicateError(err))
	assert.Equal(t, errcode.ExistData, ClassifyStorageError(err).Code)

	assert.Equal(t, errcode.ExistData, ClassifyStorageError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}).Code)
	assert.Equal(t, errcode.ExistData, ClassifyStorageError(&pgconn.PgError{Code: "23505"}).Code)
	assert.Equal(t, errcode.DBErr, ClassifyStorageError(&mysql.MySQLError{Number: 1146, Message: "no table"}).Code)
	assert.Equal(t, errcode.NoData, ClassifyStorageError(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)).Code)
	assert.Equal(t, errcode.NoPerm, ClassifyStorageError(errcode.New(errcode.NoPerm, "")).Code)

	assert.True(t, IsStorageError(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, IsStorageError(errors.New("boom")))
}
