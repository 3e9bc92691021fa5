package http

import (
	"context"
	"sync"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	apperrors "github.com/Aphidet6/earth-bettashop/pkg/errors"
)

// In-memory repositories backing the router tests. They enforce the same
// unique constraints the schema does so the resolution flows behave like
// the real store.

type fakeUserRepo struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*domain.User
	mappings map[string]int64 // provider + "\x00" + providerID -> userID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		nextID:   1,
		users:    make(map[int64]*domain.User),
		mappings: make(map[string]int64),
	}
}

func mappingKey(provider, providerID string) string {
	return provider + "\x00" + providerID
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createLocked(user)
}

func (f *fakeUserRepo) createLocked(user *domain.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperrors.AlreadyExists("user", "username", user.Username)
		}
	}
	user.ID = f.nextID
	f.nextID++
	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return apperrors.NotFound("user", user.ID)
	}
	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperrors.NotFound("user", id)
	}
	delete(f.users, id)
	for k, uid := range f.mappings {
		if uid == id {
			delete(f.mappings, k)
		}
	}
	return nil
}

func (f *fakeUserRepo) GetByProvider(_ context.Context, provider, providerID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.mappings[mappingKey(provider, providerID)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u, ok := f.users[uid]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) LinkProvider(_ context.Context, m *domain.ProviderMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := mappingKey(m.Provider, m.ProviderID)
	if _, exists := f.mappings[key]; exists {
		return nil
	}
	f.mappings[key] = m.UserID
	return nil
}

func (f *fakeUserRepo) CreateWithProvider(_ context.Context, user *domain.User, m *domain.ProviderMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createLocked(user); err != nil {
		return err
	}
	key := mappingKey(m.Provider, m.ProviderID)
	if _, exists := f.mappings[key]; !exists {
		f.mappings[key] = user.ID
	}
	m.UserID = user.ID
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{nextID: 1, products: make(map[int64]*domain.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	c := *p
	f.products[p.ID] = &c
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	c := *p
	return &c, nil
}

func (f *fakeProductRepo) List(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Product
	for _, p := range f.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return apperrors.NotFound("product", p.ID)
	}
	c := *p
	f.products[p.ID] = &c
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return apperrors.NotFound("product", id)
	}
	delete(f.products, id)
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[int64]*domain.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for i := range o.Items {
		total += o.Items[i].Price * float64(o.Items[i].Quantity)
	}
	o.TotalAmount = total
	o.ID = f.nextID
	f.nextID++
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		o.Items[i].ID = int64(i + 1)
	}
	c := *o
	f.orders[o.ID] = &c
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	c := *o
	return &c, nil
}

func (f *fakeOrderRepo) ListByUserID(_ context.Context, userID int64) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return apperrors.NotFound("order", id)
	}
	o.Status = status
	return nil
}
