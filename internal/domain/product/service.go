package product

import (
	"context"
	"errors"
)

// Service 商品领域服务
type Service interface {
	// CreateProduct 创建商品
	// 业务规则:
	// - 名称、SKU非空,价格>0
	// - SKU不能重复
	CreateProduct(ctx context.Context, sku, name string, price int64) (*Product, error)

	// GetProduct 根据ID获取商品
	GetProduct(ctx context.Context, id uint) (*Product, error)
}

type service struct {
	repo Repository
}

// NewService 创建商品领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, sku, name string, price int64) (*Product, error) {
	p, err := NewProduct(sku, name, price)
	if err != nil {
		return nil, err
	}

	// 先查一次给出友好提示,并发情况下由唯一索引兜底
	existing, err := s.repo.FindBySKU(ctx, p.SKU)
	if err == nil && existing != nil {
		return nil, ErrSKUDuplicate
	}
	if err != nil && !errors.Is(err, ErrProductNotFound) {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}
