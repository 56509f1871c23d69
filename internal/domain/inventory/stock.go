package inventory

// Stock 库存计数（值对象）
//
// 设计说明：
// 1. 只保存两个自由度：Quantity（在库总数）和Reserved（已预留）
// 2. Available = Quantity - Reserved 永远由计算得出，不单独存储状态
// 3. 只能通过NewStock构造，所有状态迁移返回新值，调用方拿到的Stock一定满足不变式：
//    0 <= Reserved <= Quantity
type Stock struct {
	quantity int
	reserved int
}

// NewStock 创建库存值对象并校验不变式
func NewStock(quantity, reserved int) (Stock, error) {
	if quantity < 0 || reserved < 0 {
		return Stock{}, ErrNegativeStock
	}
	if reserved > quantity {
		return Stock{}, ErrInconsistentStock
	}
	return Stock{quantity: quantity, reserved: reserved}, nil
}

// Quantity 在库总数（含已预留未售出的部分）
func (s Stock) Quantity() int { return s.quantity }

// Reserved 已被订单预留的数量
func (s Stock) Reserved() int { return s.reserved }

// Available 可预留数量
func (s Stock) Available() int { return s.quantity - s.reserved }

// Reserve 预留库存
func (s Stock) Reserve(n int) (Stock, error) {
	if n <= 0 {
		return s, ErrInvalidQuantity
	}
	if s.Available() < n {
		return s, ErrInsufficientStock
	}
	return NewStock(s.quantity, s.reserved+n)
}

// Release 释放预留（Reserve的逆操作）
func (s Stock) Release(n int) (Stock, error) {
	if n <= 0 {
		return s, ErrInvalidQuantity
	}
	if s.reserved < n {
		return s, ErrInvalidRelease
	}
	return NewStock(s.quantity, s.reserved-n)
}

// Sell 出库
//
// 先从Reserved中扣除min(n, Reserved)，在库总数扣除完整的n。
// allowUnreserved=false时，n不能超过Reserved（严格按预留出库）；
// allowUnreserved=true时，超出预留的部分从Available中扣除（门店直售场景）。
func (s Stock) Sell(n int, allowUnreserved bool) (Stock, error) {
	if n <= 0 {
		return s, ErrInvalidQuantity
	}
	if n > s.quantity {
		return s, ErrInsufficientStock
	}
	if !allowUnreserved && n > s.reserved {
		return s, ErrUnreservedSale
	}
	fromReserved := min(n, s.reserved)
	return NewStock(s.quantity-n, s.reserved-fromReserved)
}

// Restock 补货
func (s Stock) Restock(n int) (Stock, error) {
	if n <= 0 {
		return s, ErrInvalidQuantity
	}
	return NewStock(s.quantity+n, s.reserved)
}
