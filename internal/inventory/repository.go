package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

// ProductRepository provides read access to the product catalog.
type ProductRepository interface {
	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// ListAll retrieves the full catalog
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// PantryRepository handles persistence of pantry records. Lookups are
// keyed by (userID, productID) so the one-record-per-pair invariant is
// enforced by the store, not by callers.
type PantryRepository interface {
	// GetByID retrieves a record by primary key
	GetByID(ctx context.Context, id int64) (*domain.PantryRecord, error)

	// GetByUserAndProduct retrieves the single record for a (user, product) pair
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.PantryRecord, error)

	// ListByUser retrieves all records belonging to one user
	ListByUser(ctx context.Context, userID int64) ([]domain.PantryRecord, error)

	// Save inserts or updates a single record
	Save(ctx context.Context, rec *domain.PantryRecord) error

	// SaveAll persists a batch of records atomically
	SaveAll(ctx context.Context, recs []*domain.PantryRecord) error
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	DB *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{DB: db}
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.DB.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&products).Error
	return products, err
}

// GormPantryRepository is the GORM implementation of PantryRepository
type GormPantryRepository struct {
	DB *gorm.DB
}

func NewGormPantryRepository(db *gorm.DB) *GormPantryRepository {
	return &GormPantryRepository{DB: db}
}

func (r *GormPantryRepository) GetByID(ctx context.Context, id int64) (*domain.PantryRecord, error) {
	var rec domain.PantryRecord
	err := r.DB.WithContext(ctx).First(&rec, id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormPantryRepository) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.PantryRecord, error) {
	var rec domain.PantryRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormPantryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.PantryRecord, error) {
	var recs []domain.PantryRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&recs).Error
	return recs, err
}

func (r *GormPantryRepository) Save(ctx context.Context, rec *domain.PantryRecord) error {
	return r.DB.WithContext(ctx).Save(rec).Error
}

func (r *GormPantryRepository) SaveAll(ctx context.Context, recs []*domain.PantryRecord) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range recs {
			if err := tx.Save(rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
