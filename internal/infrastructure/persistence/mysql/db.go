package mysql

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dukamart/inventory/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. 开发环境打印SQL(通过zerolog输出),生产环境只打印慢查询
func NewDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.Server.Mode == "debug" {
		level = logger.Info
	}

	db, err := Open(mysql.Open(cfg.Database.DSN()), log, level)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("数据库连接成功")

	// 生产环境应使用版本化的迁移脚本,通过database.auto_migrate=false关闭
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}
	return db, nil
}

// Open 使用指定方言打开连接(MySQL生产,SQLite测试)
func Open(dialector gorm.Dialector, log zerolog.Logger, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(gormWriter{log: log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		// 唯一索引冲突统一翻译成gorm.ErrDuplicatedKey
		TranslateError: true,
	})
}

// AutoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ProductModel{},
		&InventoryModel{},
		&InventoryLogModel{},
	)
}

// gormWriter 把GORM日志转到zerolog
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Str("component", "gorm").Msgf(format, args...)
}

// ProductModel GORM商品模型
// 这是infrastructure层的数据模型,domain/product是不依赖GORM的领域实体
type ProductModel struct {
	ID        uint      `gorm:"primaryKey"`
	SKU       string    `gorm:"uniqueIndex;size:64;not null;comment:SKU"`
	Name      string    `gorm:"size:200;not null;comment:商品名称"`
	Price     int64     `gorm:"not null;comment:价格(分)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (ProductModel) TableName() string {
	return "products"
}

// InventoryModel GORM库存记录模型
// 设计说明:
// 1. product_id唯一索引,保证每个商品最多一条记录
// 2. 只存quantity和reserved,available由两者计算,不会出现三者不一致
// 3. version是乐观锁版本号,所有计数更新都带 WHERE version = ?
// 4. 低库存查询走 idx_inventory_low_stock(quantity, reorder_level)
type InventoryModel struct {
	ID              uint       `gorm:"primaryKey"`
	ProductID       uint       `gorm:"uniqueIndex;not null;comment:商品ID"`
	Quantity        int        `gorm:"index:idx_inventory_low_stock;not null;default:0;check:chk_inventory_quantity,quantity >= 0;comment:在库总数"`
	Reserved        int        `gorm:"not null;default:0;check:chk_inventory_reserved,reserved >= 0 AND reserved <= quantity;comment:已预留"`
	ReorderLevel    int        `gorm:"index:idx_inventory_low_stock;not null;default:10;comment:补货阈值"`
	ReorderQuantity int        `gorm:"not null;default:50;comment:建议补货量"`
	LastSoldAt      *time.Time `gorm:"comment:最近出库时间"`
	LastRestockAt   *time.Time `gorm:"comment:最近补货时间"`
	Version         uint       `gorm:"not null;default:1;comment:乐观锁版本号"`
	CreatedAt       time.Time  `gorm:"comment:创建时间"`
	UpdatedAt       time.Time  `gorm:"comment:更新时间"`
}

func (InventoryModel) TableName() string {
	return "inventory_records"
}

// InventoryLogModel GORM库存流水模型
// 只追加,没有UpdatedAt和软删除字段
type InventoryLogModel struct {
	ID             uint      `gorm:"primaryKey"`
	InventoryID    uint      `gorm:"index:idx_inventory_log_recent,priority:1;not null;comment:库存记录ID"`
	ProductID      uint      `gorm:"index;not null;comment:商品ID"`
	Type           string    `gorm:"size:20;not null;comment:类型(RESERVATION/SALE/RESTOCK)"`
	QuantityChange int       `gorm:"not null;comment:数量变化(带符号)"`
	Reason         string    `gorm:"size:255;not null;default:'';comment:变更原因"`
	CreatedAt      time.Time `gorm:"index:idx_inventory_log_recent,priority:2;comment:创建时间"`
}

func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}
