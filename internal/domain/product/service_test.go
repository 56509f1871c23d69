package product

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo 内存实现,仅用于领域服务测试
type memRepo struct {
	mu    sync.Mutex
	items map[uint]*Product
	next  uint
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[uint]*Product)}
}

func (r *memRepo) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.SKU == p.SKU {
			return ErrSKUDuplicate
		}
	}
	r.next++
	p.ID = r.next
	r.items[p.ID] = p
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.items[id]; ok {
		return p, nil
	}
	return nil, ErrProductNotFound
}

func (r *memRepo) FindBySKU(_ context.Context, sku string) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct(" ugali-2kg ", "Ugali Flour 2kg", 21000)
	require.NoError(t, err)
	assert.Equal(t, "UGALI-2KG", p.SKU)
	assert.Equal(t, int64(21000), p.Price)

	_, err = NewProduct("SKU", "  ", 100)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewProduct("", "Sugar", 100)
	assert.ErrorIs(t, err, ErrInvalidSKU)

	_, err = NewProduct("SKU", "Sugar", 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	p, err := svc.CreateProduct(ctx, "milk-500", "Fresh Milk 500ml", 6500)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	t.Run("SKU重复", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, "MILK-500", "Another Milk", 7000)
		assert.ErrorIs(t, err, ErrSKUDuplicate)
	})

	t.Run("按ID查询", func(t *testing.T) {
		got, err := svc.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fresh Milk 500ml", got.Name)

		_, err = svc.GetProduct(ctx, 999)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}
