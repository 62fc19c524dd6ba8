package model

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// All 需要迁移的模型
func All() []any {
	return []any{&SysUser{}, &SysCustomer{}, &UriGrant{}}
}

// Migrate 自动建表并建立有效记录唯一索引
func Migrate(db *gorm.DB, models ...any) error {
	if len(models) == 0 {
		models = All()
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, m := range models {
		lu, ok := m.(LiveUnique)
		if !ok {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("parse model: %w", err)
		}
		table := stmt.Schema.Table

		for _, fields := range lu.LiveUniqueFields() {
			name := "uk_" + table + "_" + strings.Join(fields, "_")
			if db.Migrator().HasIndex(m, name) {
				continue
			}
			columns := append(append([]string{}, fields...), "is_deleted")
			sql := fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", name, table, strings.Join(columns, ", "))
			if err := db.Exec(sql).Error; err != nil {
				return fmt.Errorf("create index %s: %w", name, err)
			}
		}
	}
	return nil
}
