package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"plus_admin_v1/internal/errcode"
)

// ==================== 存储错误归类 ====================

// IsDuplicateError 是否唯一约束冲突
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	// sqlite 驱动不做错误翻译时按文本判断
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsStorageError 是否来自存储层
func IsStorageError(err error) bool {
	if err == nil {
		return false
	}
	if IsDuplicateError(err) {
		return true
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, gorm.ErrInvalidTransaction),
		errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidField),
		errors.Is(err, gorm.ErrMissingWhereClause),
		errors.Is(err, gorm.ErrPrimaryKeyRequired),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, sql.ErrTxDone),
		errors.Is(err, driver.ErrBadConn):
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "SQL logic error") || strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "constraint failed")
}

// ClassifyStorageError 将存储层错误转换为业务错误
// 唯一冲突 -> 4402，记录不存在 -> 4401，其余 -> 4403
func ClassifyStorageError(err error) *errcode.Error {
	if err == nil {
		return nil
	}
	if e, ok := errcode.From(err); ok {
		return e
	}

	switch {
	case IsDuplicateError(err):
		return errcode.Wrap(errcode.ExistData, err, "")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errcode.Wrap(errcode.NoData, err, "")
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errcode.Wrap(errcode.DBErr, err, mysqlErr.Message)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errcode.Wrap(errcode.DBErr, err, pgErr.Message)
	}
	return errcode.Wrap(errcode.DBErr, err, "")
}
