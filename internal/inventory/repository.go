package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luistorres-dev/tiendita-backend/pkg/db"
	"github.com/luistorres-dev/tiendita-backend/pkg/db/models"
	pkgerrors "github.com/luistorres-dev/tiendita-backend/pkg/errors"
	"github.com/luistorres-dev/tiendita-backend/pkg/pagination"
)

// Repository defines persistence operations for variants and their movement
// ledger. All mutating methods are meant to run inside a transaction scope
// obtained through WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	FindVariantForUpdate(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	SaveVariant(ctx context.Context, variant *models.ProductVariant) error
	AppendMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, variantID uuid.UUID, params pagination.Params) (*MovementListResult, error)
	SumMovements(ctx context.Context, variantID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindVariantForUpdate loads the variant under an exclusive row lock so
// concurrent adjustments to the same variant serialize on the database.
// Different variants never block each other. The stored stock value is
// normalized before it reaches the business rule.
func (r *repository) FindVariantForUpdate(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	q := r.db.WithContext(ctx)
	// SQLite has no SELECT ... FOR UPDATE; its transaction-level write lock
	// already serializes adjustments there.
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var variant models.ProductVariant
	if err := q.First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	variant.Stock = NormalizeStock(variant.Stock)
	return &variant, nil
}

func (r *repository) SaveVariant(ctx context.Context, variant *models.ProductVariant) error {
	if err := r.db.WithContext(ctx).Save(variant).Error; err != nil {
		if db.IsUniqueViolation(err, "idx_product_variants_sku") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already in use")
		}
		return err
	}
	return nil
}

func (r *repository) AppendMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "stock movement already recorded")
		}
		return err
	}
	return nil
}

// MovementListResult carries one page of ledger rows plus the next cursor.
type MovementListResult struct {
	Movements  []models.StockMovement
	NextCursor string
}

func (r *repository) ListMovements(ctx context.Context, variantID uuid.UUID, params pagination.Params) (*MovementListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Where("product_variant_id = ?", variantID)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.StockMovement
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &MovementListResult{Movements: rows, NextCursor: nextCursor}, nil
}

// SumMovements returns the running sum of ledger deltas for a variant. By
// construction it reconciles with the variant's current stock minus its
// initial stock.
func (r *repository) SumMovements(ctx context.Context, variantID uuid.UUID) (int64, error) {
	var total *int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("product_variant_id = ?", variantID).
		Select("SUM(change)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// NormalizeStock sanitizes a stored stock value at the data-access boundary.
// Legacy rows have been seen holding junk counts; treat anything below zero
// as zero instead of letting it poison the arithmetic downstream.
func NormalizeStock(stored int) int {
	if stored < 0 {
		return 0
	}
	return stored
}
