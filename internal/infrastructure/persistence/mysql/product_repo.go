package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dukamart/inventory/internal/domain/product"
	apperrors "github.com/dukamart/inventory/pkg/errors"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	model := &ProductModel{
		SKU:   p.SKU,
		Name:  p.Name,
		Price: p.Price,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return product.ErrSKUDuplicate
		}
		return apperrors.ErrDatabaseError.WithErr(err)
	}

	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.findOne(ctx, "sku = ?", sku)
}

func (r *productRepository) findOne(ctx context.Context, query string, arg interface{}) (*product.Product, error) {
	var model ProductModel
	if err := getDB(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithErr(err)
	}
	return &product.Product{
		ID:        model.ID,
		SKU:       model.SKU,
		Name:      model.Name,
		Price:     model.Price,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}
