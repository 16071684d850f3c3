package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

// In-memory repository fakes for exercising the core without a database.

type memProducts struct {
	items map[int64]domain.Product
}

func newMemProducts(products ...domain.Product) *memProducts {
	m := &memProducts{items: make(map[int64]domain.Product)}
	for _, p := range products {
		m.items[p.ID] = p
	}
	return m
}

func (m *memProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *memProducts) ListAll(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, nil
}

type memPantry struct {
	recs map[int64]domain.PantryRecord
}

func newMemPantry(recs ...domain.PantryRecord) *memPantry {
	m := &memPantry{recs: make(map[int64]domain.PantryRecord)}
	for _, r := range recs {
		m.recs[r.ID] = r
	}
	return m
}

func (m *memPantry) GetByID(_ context.Context, id int64) (*domain.PantryRecord, error) {
	r, ok := m.recs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memPantry) GetByUserAndProduct(_ context.Context, userID, productID int64) (*domain.PantryRecord, error) {
	for _, r := range m.recs {
		if r.UserID == userID && r.ProductID == productID {
			rec := r
			return &rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memPantry) ListByUser(_ context.Context, userID int64) ([]domain.PantryRecord, error) {
	var out []domain.PantryRecord
	for _, r := range m.recs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memPantry) Save(_ context.Context, rec *domain.PantryRecord) error {
	m.recs[rec.ID] = *rec
	return nil
}

func (m *memPantry) SaveAll(_ context.Context, recs []*domain.PantryRecord) error {
	for _, rec := range recs {
		m.recs[rec.ID] = *rec
	}
	return nil
}

// snapshot returns a copy of the stored records for change detection.
func (m *memPantry) snapshot() map[int64]domain.PantryRecord {
	out := make(map[int64]domain.PantryRecord, len(m.recs))
	for id, r := range m.recs {
		out[id] = r
	}
	return out
}
