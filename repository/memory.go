package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
)

var (
	_ UserRepository    = (*MemoryUsers)(nil)
	_ ProductRepository = (*MemoryProducts)(nil)
	_ CartRepository    = (*MemoryCarts)(nil)
	_ OrderRepository   = (*MemoryOrders)(nil)
	_ PaymentRepository = (*MemoryPayments)(nil)
	_ Denylist          = (*MemoryDenylist)(nil)
)

type MemoryUsers struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[primitive.ObjectID]models.User)}
}

func (m *MemoryUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID] = cloneUser(*u)
	return nil
}

func (m *MemoryUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneUser(u)
	return &cp, nil
}

func (m *MemoryUsers) FindByLogin(_ context.Context, email, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if (email != "" && strings.EqualFold(u.Email, email)) || (username != "" && u.Username == username) {
			cp := cloneUser(u)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUsers) UpdateAddresses(_ context.Context, id primitive.ObjectID, addresses []models.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Addresses = slices.Clone(addresses)
	m.users[id] = u
	return nil
}

func cloneUser(u models.User) models.User {
	u.Addresses = slices.Clone(u.Addresses)
	return u
}

// MemoryProducts keeps insertion order so listings are stable.
type MemoryProducts struct {
	mu       sync.RWMutex
	order    []primitive.ObjectID
	products map[primitive.ObjectID]models.Product
}

func NewMemoryProducts() *MemoryProducts {
	return &MemoryProducts{products: make(map[primitive.ObjectID]models.Product)}
}

func (m *MemoryProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, ok := m.products[p.ID]; ok {
		return ErrDuplicate
	}
	m.order = append(m.order, p.ID)
	m.products[p.ID] = cloneProduct(*p)
	return nil
}

func (m *MemoryProducts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneProduct(p)
	return &cp, nil
}

func (m *MemoryProducts) Update(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return ErrNotFound
	}
	m.products[p.ID] = cloneProduct(*p)
	return nil
}

func (m *MemoryProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	m.order = slices.DeleteFunc(m.order, func(existing primitive.ObjectID) bool { return existing == id })
	return nil
}

func (m *MemoryProducts) List(_ context.Context, f ProductFilter) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Product, 0)
	var skipped int64
	for _, id := range m.order {
		p := m.products[id]
		if !matchesProduct(p, f) {
			continue
		}
		if skipped < f.Skip {
			skipped++
			continue
		}
		if f.Limit > 0 && int64(len(out)) >= f.Limit {
			break
		}
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

// matchesProduct approximates the text index with per-word substring matching.
func matchesProduct(p models.Product, f ProductFilter) bool {
	if f.Seller != nil && p.Seller != *f.Seller {
		return false
	}
	if f.MinPrice != nil && p.Price.Amount.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.Amount.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Query == "" {
		return true
	}
	for _, word := range strings.Fields(f.Query) {
		if containsIgnoreCase(p.Title, word) || containsIgnoreCase(p.Description, word) {
			return true
		}
	}
	return false
}

func cloneProduct(p models.Product) models.Product {
	p.Images = slices.Clone(p.Images)
	return p
}

type MemoryCarts struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]models.Cart
}

func NewMemoryCarts() *MemoryCarts {
	return &MemoryCarts{carts: make(map[primitive.ObjectID]models.Cart)}
}

func (m *MemoryCarts) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Items = slices.Clone(c.Items)
	return &c, nil
}

func (m *MemoryCarts) GetOrCreate(_ context.Context, userID primitive.ObjectID, now time.Time) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.load(userID, now)
	return m.store(c), nil
}

func (m *MemoryCarts) AddItem(_ context.Context, userID, productID primitive.ObjectID, qty int, now time.Time) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.load(userID, now)
	c.AddItem(productID, qty)
	c.UpdatedAt = now
	return m.store(c), nil
}

func (m *MemoryCarts) SetQuantity(_ context.Context, userID, productID primitive.ObjectID, qty int, now time.Time) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Items = slices.Clone(c.Items)
	if !c.SetQuantity(productID, qty) {
		return nil, ErrNotFound
	}
	c.UpdatedAt = now
	return m.store(c), nil
}

func (m *MemoryCarts) Clear(_ context.Context, userID primitive.ObjectID, now time.Time) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.load(userID, now)
	c.Clear()
	c.UpdatedAt = now
	return m.store(c), nil
}

// load returns a private copy of the user's cart or a fresh one. Callers hold mu.
func (m *MemoryCarts) load(userID primitive.ObjectID, now time.Time) models.Cart {
	c, ok := m.carts[userID]
	if !ok {
		return models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []models.CartItem{}, CreatedAt: now, UpdatedAt: now}
	}
	c.Items = slices.Clone(c.Items)
	return c
}

// store saves c and hands back a copy the caller may mutate. Callers hold mu.
func (m *MemoryCarts) store(c models.Cart) *models.Cart {
	m.carts[c.UserID] = c
	out := c
	out.Items = slices.Clone(c.Items)
	return &out
}

type MemoryOrders struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]models.Order
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{orders: make(map[primitive.ObjectID]models.Order)}
}

func (m *MemoryOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if _, ok := m.orders[o.ID]; ok {
		return ErrDuplicate
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *MemoryOrders) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneOrder(o)
	return &cp, nil
}

func (m *MemoryOrders) Update(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		return ErrNotFound
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *MemoryOrders) ListByUser(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Order, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var mine []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			mine = append(mine, cloneOrder(o))
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	total := int64(len(mine))
	if skip >= total {
		return []models.Order{}, total, nil
	}
	end := total
	if limit > 0 && skip+limit < total {
		end = skip + limit
	}
	return mine[skip:end], total, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

type MemoryPayments struct {
	mu       sync.RWMutex
	payments map[primitive.ObjectID]models.Payment
}

func NewMemoryPayments() *MemoryPayments {
	return &MemoryPayments{payments: make(map[primitive.ObjectID]models.Payment)}
}

func (m *MemoryPayments) Create(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.payments[p.ID] = *p
	return nil
}

func (m *MemoryPayments) FindPendingByGatewayOrder(_ context.Context, gatewayOrderID string) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.GatewayOrderID == gatewayOrderID && p.Status == models.PaymentStatusPending {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryPayments) Update(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ID]; !ok {
		return ErrNotFound
	}
	m.payments[p.ID] = *p
	return nil
}

type MemoryDenylist struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{now: time.Now, tokens: make(map[string]time.Time)}
}

func (m *MemoryDenylist) Add(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !expiresAt.After(m.now()) {
		return nil
	}
	m.tokens[token] = expiresAt
	return nil
}

func (m *MemoryDenylist) Contains(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiresAt, ok := m.tokens[token]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(m.now()) {
		delete(m.tokens, token)
		return false, nil
	}
	return true, nil
}
