package middleware

import (
	"reflect"

	"gorm.io/gorm"
)

// ==================== GORM 审计回调 ====================

// 审计字段
const (
	auditCreateUser = "CreateUser"
	auditUpdateUser = "UpdateUser"
)

// RegisterAuditCallbacks 注册 GORM 审计回调
// 从 Statement.Context 中读取当前身份，Create 时填充 CreateUser/UpdateUser，Update 时覆盖 UpdateUser
func RegisterAuditCallbacks(db *gorm.DB) error {
	err := db.Callback().Create().Before("gorm:create").Register("audit:create", func(tx *gorm.DB) {
		username := auditUsername(tx)
		if username == "" {
			return
		}
		setAuditField(tx, auditCreateUser, username)
		setAuditField(tx, auditUpdateUser, username)
	})
	if err != nil {
		return err
	}

	return db.Callback().Update().Before("gorm:update").Register("audit:update", func(tx *gorm.DB) {
		username := auditUsername(tx)
		if username == "" || tx.Statement.Schema == nil {
			return
		}
		if field := tx.Statement.Schema.LookUpField(auditUpdateUser); field != nil {
			tx.Statement.SetColumn(field.DBName, username, true)
		}
	})
}

// auditUsername 当前操作人
func auditUsername(tx *gorm.DB) string {
	if tx.Statement.Context == nil {
		return ""
	}
	if user := UserFromContext(tx.Statement.Context); user != nil {
		return user.Username
	}
	return ""
}

// setAuditField 填充为空的审计字段
func setAuditField(tx *gorm.DB, fieldName string, value string) {
	if tx.Statement.Schema == nil {
		return
	}

	field := tx.Statement.Schema.LookUpField(fieldName)
	if field == nil {
		return
	}

	switch tx.Statement.ReflectValue.Kind() {
	case reflect.Struct:
		if _, isZero := field.ValueOf(tx.Statement.Context, tx.Statement.ReflectValue); isZero {
			_ = field.Set(tx.Statement.Context, tx.Statement.ReflectValue, value)
		}
	case reflect.Slice:
		// 批量插入
		for i := 0; i < tx.Statement.ReflectValue.Len(); i++ {
			rv := tx.Statement.ReflectValue.Index(i)
			if rv.Kind() == reflect.Ptr {
				rv = rv.Elem()
			}
			if _, isZero := field.ValueOf(tx.Statement.Context, rv); isZero {
				_ = field.Set(tx.Statement.Context, rv, value)
			}
		}
	}
}
