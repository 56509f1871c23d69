// Package sqlitetest 为仓储和账本测试提供内存SQLite数据库
//
// 使用纯Go实现的SQLite(不需要CGO),表结构与MySQL使用同一套GORM模型。
package sqlitetest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dukamart/inventory/internal/infrastructure/persistence/mysql"
	applog "github.com/dukamart/inventory/pkg/logger"
)

// New 创建独立的内存数据库并完成迁移
// 每个测试使用随机库名,互不影响;测试结束自动关闭
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := mysql.Open(sqlite.Open(dsn), applog.Nop(), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// SQLite同一时刻只允许一个写事务,单连接让并发事务排队而不是报database is locked
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.AutoMigrate(db))
	return db
}
