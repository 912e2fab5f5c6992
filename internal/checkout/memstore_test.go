package checkout

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// memStore implements every store port in memory, with the same conditional
// semantics the mongostore package gets from its update filters. Its Txn
// snapshots all state and restores it on failure, so the coordinator's
// rollback behavior is exercised for real.
type memStore struct {
	mu            sync.Mutex
	verifications map[string]models.PhoneVerification
	customers     map[string]models.Customer
	limits        map[string]models.RateLimitEntry
	carts         map[string]models.CartSession
	products      map[primitive.ObjectID]models.Product
	orders        []models.Order
	addresses     map[string]models.Address
	sequences     map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		verifications: make(map[string]models.PhoneVerification),
		customers:     make(map[string]models.Customer),
		limits:        make(map[string]models.RateLimitEntry),
		carts:         make(map[string]models.CartSession),
		products:      make(map[primitive.ObjectID]models.Product),
		addresses:     make(map[string]models.Address),
		sequences:     make(map[string]int64),
	}
}

/* ---- VerificationStore ---- */

func (m *memStore) Get(_ context.Context, phone string) (*models.PhoneVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (m *memStore) Put(_ context.Context, v *models.PhoneVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications[v.Phone] = *v
	return nil
}

func (m *memStore) IncrementAttempts(_ context.Context, phone string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[phone]
	if !ok {
		return 0, ErrNotFound
	}
	v.Attempts++
	m.verifications[phone] = v
	return v.Attempts, nil
}

func (m *memStore) Block(_ context.Context, phone string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[phone]
	if !ok {
		return ErrNotFound
	}
	v.BlockedUntil = &until
	m.verifications[phone] = v
	return nil
}

func (m *memStore) MarkVerified(_ context.Context, phone string, at time.Time, customerID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[phone]
	if !ok || v.VerifiedAt != nil {
		return ErrConflict
	}
	v.VerifiedAt = &at
	v.CustomerID = &customerID
	m.verifications[phone] = v
	return nil
}

func (m *memStore) Consume(_ context.Context, phone string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[phone]
	if !ok || v.VerifiedAt == nil || v.ConsumedAt != nil {
		return ErrConflict
	}
	v.ConsumedAt = &at
	m.verifications[phone] = v
	return nil
}

/* ---- CustomerStore ---- */

func (m *memStore) UpsertByPhone(_ context.Context, phone, name string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[phone]
	if !ok {
		customer = models.Customer{
			ID:        primitive.NewObjectID(),
			Phone:     phone,
			CreatedAt: time.Now(),
		}
	}
	customer.Name = name
	customer.UpdatedAt = time.Now()
	m.customers[phone] = customer
	return &customer, nil
}

/* ---- RateLimitStore ---- */

func (m *memStore) Bump(_ context.Context, key string, window time.Duration, now time.Time) (*models.RateLimitEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.limits[key]
	if !ok || now.Sub(entry.WindowStart) >= window {
		entry = models.RateLimitEntry{Key: key, Count: 1, WindowStart: now}
	} else {
		entry.Count++
	}
	m.limits[key] = entry
	return &entry, nil
}

func (m *memStore) Refund(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.limits[key]
	if ok && entry.Count > 0 {
		entry.Count--
		m.limits[key] = entry
	}
	return nil
}

/* ---- CartStore ---- */

func (m *memStore) GetCart(ctx context.Context, sessionID string) (*models.CartSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cart.Items = append([]models.CartItem(nil), cart.Items...)
	return &cart, nil
}

func (m *memStore) PutCart(_ context.Context, cart *models.CartSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *cart
	stored.Items = append([]models.CartItem(nil), cart.Items...)
	m.carts[cart.SessionID] = stored
	return nil
}

func (m *memStore) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

// cartPort adapts memStore to the CartStore interface; the method names
// differ because memStore already uses Get for verifications.
type cartPort struct{ m *memStore }

func (p cartPort) Get(ctx context.Context, sessionID string) (*models.CartSession, error) {
	return p.m.GetCart(ctx, sessionID)
}
func (p cartPort) Put(ctx context.Context, cart *models.CartSession) error {
	return p.m.PutCart(ctx, cart)
}
func (p cartPort) Delete(ctx context.Context, sessionID string) error {
	return p.m.DeleteCart(ctx, sessionID)
}

/* ---- InventoryStore ---- */

func (m *memStore) GetProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (m *memStore) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.IsDeleted || !product.IsActive || product.Stock < qty {
		return ErrConflict
	}
	product.Stock -= qty
	m.products[id] = product
	return nil
}

/* ---- AddressStore ---- */

type addressPort struct{ m *memStore }

func (p addressPort) Get(_ context.Context, id string) (*models.Address, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	address, ok := p.m.addresses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &address, nil
}

func (p addressPort) List(_ context.Context, customerID primitive.ObjectID) ([]models.Address, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	var out []models.Address
	for _, address := range p.m.addresses {
		if address.CustomerID == customerID {
			out = append(out, address)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		li, lj := time.Time{}, time.Time{}
		if out[i].LastUsed != nil {
			li = *out[i].LastUsed
		}
		if out[j].LastUsed != nil {
			lj = *out[j].LastUsed
		}
		return li.After(lj)
	})
	return out, nil
}

func (p addressPort) Count(_ context.Context, customerID primitive.ObjectID) (int64, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	var n int64
	for _, address := range p.m.addresses {
		if address.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (p addressPort) Insert(_ context.Context, a *models.Address) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	p.m.addresses[a.ID] = *a
	return nil
}

func (p addressPort) Update(_ context.Context, a *models.Address) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	existing, ok := p.m.addresses[a.ID]
	if !ok || existing.CustomerID != a.CustomerID {
		return ErrNotFound
	}
	p.m.addresses[a.ID] = *a
	return nil
}

func (p addressPort) Delete(_ context.Context, id string, customerID primitive.ObjectID) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	existing, ok := p.m.addresses[id]
	if !ok || existing.CustomerID != customerID {
		return ErrNotFound
	}
	delete(p.m.addresses, id)
	return nil
}

func (p addressPort) ClearDefault(_ context.Context, customerID primitive.ObjectID) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	for id, address := range p.m.addresses {
		if address.CustomerID == customerID && address.IsDefault {
			address.IsDefault = false
			p.m.addresses[id] = address
		}
	}
	return nil
}

func (p addressPort) Touch(_ context.Context, id string, at time.Time) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	address, ok := p.m.addresses[id]
	if !ok {
		return ErrNotFound
	}
	address.UsageCount++
	address.LastUsed = &at
	p.m.addresses[id] = address
	return nil
}

/* ---- OrderStore ---- */

type orderPort struct{ m *memStore }

func (p orderPort) Insert(_ context.Context, o *models.Order) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	stored := *o
	stored.Items = append([]models.OrderItem(nil), o.Items...)
	stored.StatusHistory = append([]models.StatusChange(nil), o.StatusHistory...)
	p.m.orders = append(p.m.orders, stored)
	return nil
}

func (p orderPort) FindByNumberAndPhone(_ context.Context, orderNumber, phone string) (*models.Order, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	for i := range p.m.orders {
		if p.m.orders[i].OrderNumber == orderNumber && p.m.orders[i].CustomerPhone == phone {
			order := p.m.orders[i]
			return &order, nil
		}
	}
	return nil, ErrNotFound
}

/* ---- SequenceStore ---- */

type sequencePort struct{ m *memStore }

func (p sequencePort) Next(_ context.Context, dateKey string) (int64, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	p.m.sequences[dateKey]++
	return p.m.sequences[dateKey], nil
}

/* ---- Txn ---- */

// memTxn restores a full snapshot when fn fails, mirroring a rolled-back
// Mongo transaction.
type memTxn struct{ m *memStore }

func (t memTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := t.m.snapshot()
	if err := fn(ctx); err != nil {
		t.m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memStore) snapshot() *memStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newMemStore()
	for k, v := range m.verifications {
		s.verifications[k] = v
	}
	for k, v := range m.customers {
		s.customers[k] = v
	}
	for k, v := range m.limits {
		s.limits[k] = v
	}
	for k, v := range m.carts {
		v.Items = append([]models.CartItem(nil), v.Items...)
		s.carts[k] = v
	}
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.addresses {
		s.addresses[k] = v
	}
	for k, v := range m.sequences {
		s.sequences[k] = v
	}
	s.orders = append([]models.Order(nil), m.orders...)
	return s
}

func (m *memStore) restore(s *memStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = s.verifications
	m.customers = s.customers
	m.limits = s.limits
	m.carts = s.carts
	m.products = s.products
	m.addresses = s.addresses
	m.sequences = s.sequences
	m.orders = s.orders
}

/* ---- shared helpers ---- */

func (m *memStore) addProduct(name string, priceMinor int64, stock int) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	m.products[id] = models.Product{
		ID:         id,
		Name:       name,
		PriceMinor: priceMinor,
		Stock:      stock,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	return id
}

func (m *memStore) product(id primitive.ObjectID) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id]
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}
