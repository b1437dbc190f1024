package customer_test

import (
	"context"
	"errors"
	"time"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

var errBoom = errors.New("boom")

type fakeCustomerRepository struct {
	customers  map[int64]domain.Customer
	nextID     int64
	err        error
	count      int64
	countCalls int
	since      time.Time
	filter     domain.SearchFilter
	deleted    [][]int64
}

func newFakeCustomerRepository(customers ...domain.Customer) *fakeCustomerRepository {
	r := &fakeCustomerRepository{customers: map[int64]domain.Customer{}, nextID: 100}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepository) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	if r.err != nil {
		return domain.Customer{}, r.err
	}
	c, ok := r.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (r *fakeCustomerRepository) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	if r.err != nil {
		return domain.Customer{}, r.err
	}
	r.nextID++
	c.ID = r.nextID
	r.customers[c.ID] = c
	return c, nil
}

func (r *fakeCustomerRepository) Update(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	if _, ok := r.customers[c.ID]; !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	r.customers[c.ID] = c
	return c, nil
}

func (r *fakeCustomerRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	r.deleted = append(r.deleted, ids)
	var n int64
	for _, id := range ids {
		if _, ok := r.customers[id]; ok {
			delete(r.customers, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeCustomerRepository) Search(ctx context.Context, filter domain.SearchFilter) (domain.CustomerPage, error) {
	r.filter = filter
	if r.err != nil {
		return domain.CustomerPage{}, r.err
	}
	items := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		items = append(items, c)
	}
	return domain.CustomerPage{Items: items, Total: int64(len(items))}, nil
}

func (r *fakeCustomerRepository) Count(ctx context.Context) (int64, error) {
	r.countCalls++
	if r.err != nil {
		return 0, r.err
	}
	return r.count, nil
}

func (r *fakeCustomerRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	r.since = since
	return r.count, nil
}

type fakeCountCache struct {
	value       int64
	ok          bool
	getErr      error
	sets        []int64
	invalidated int
}

func (c *fakeCountCache) Get(ctx context.Context) (int64, bool, error) {
	return c.value, c.ok, c.getErr
}

func (c *fakeCountCache) Set(ctx context.Context, count int64) error {
	c.sets = append(c.sets, count)
	return nil
}

func (c *fakeCountCache) Invalidate(ctx context.Context) error {
	c.invalidated++
	return nil
}

type fakeMatcher struct {
	phones    map[string]domain.BatchMatch
	names     map[string]domain.BatchMatch
	asked     []string
	nameCalls []string
	err       error
}

func (m *fakeMatcher) FindByPhones(ctx context.Context, phones []string) (map[string]domain.BatchMatch, error) {
	m.asked = append(m.asked, phones...)
	if m.err != nil {
		return nil, m.err
	}
	found := make(map[string]domain.BatchMatch)
	for _, p := range phones {
		if match, ok := m.phones[p]; ok {
			found[p] = match
		}
	}
	return found, nil
}

func (m *fakeMatcher) FindByName(ctx context.Context, name string) (domain.BatchMatch, error) {
	m.nameCalls = append(m.nameCalls, name)
	match, ok := m.names[name]
	if !ok {
		return domain.BatchMatch{}, domain.ErrCustomerNotFound
	}
	return match, nil
}

type fakeRemarkRepository struct {
	remarks map[int64]domain.CustomerRemark
	err     error
	deleted []int64
}

func newFakeRemarkRepository() *fakeRemarkRepository {
	return &fakeRemarkRepository{remarks: map[int64]domain.CustomerRemark{}}
}

func (r *fakeRemarkRepository) Get(ctx context.Context, customerID int64) (domain.CustomerRemark, error) {
	if r.err != nil {
		return domain.CustomerRemark{}, r.err
	}
	remark, ok := r.remarks[customerID]
	if !ok {
		return domain.CustomerRemark{}, domain.ErrRemarkNotFound
	}
	return remark, nil
}

func (r *fakeRemarkRepository) Save(ctx context.Context, customerID int64, text string) (domain.CustomerRemark, error) {
	if r.err != nil {
		return domain.CustomerRemark{}, r.err
	}
	remark := domain.CustomerRemark{CustomerID: customerID, Text: text, UpdatedAt: time.Now()}
	r.remarks[customerID] = remark
	return remark, nil
}

func (r *fakeRemarkRepository) Delete(ctx context.Context, customerID int64) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, customerID)
	delete(r.remarks, customerID)
	return nil
}
