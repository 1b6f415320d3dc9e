package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luistorres-dev/tiendita-backend/pkg/db/models"
	"github.com/luistorres-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/luistorres-dev/tiendita-backend/pkg/errors"
	"github.com/luistorres-dev/tiendita-backend/pkg/logger"
	"github.com/luistorres-dev/tiendita-backend/pkg/metrics"
	"github.com/luistorres-dev/tiendita-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the only sanctioned writer of variant stock. Every change goes
// through AdjustVariantStock so the non-negative invariant holds and the
// movement ledger stays complete.
type Service interface {
	// AdjustVariantStock runs the adjustment in a service-owned transaction.
	AdjustVariantStock(ctx context.Context, input AdjustStockInput) (*models.ProductVariant, error)
	// AdjustVariantStockInTx joins a caller-supplied transaction so several
	// adjustments (or other writes) commit or roll back together.
	AdjustVariantStockInTx(ctx context.Context, tx *gorm.DB, input AdjustStockInput) (*models.ProductVariant, error)
	GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
	ListMovements(ctx context.Context, variantID uuid.UUID, params pagination.Params) (*MovementListResult, error)
}

// AdjustStockInput captures one signed stock adjustment.
type AdjustStockInput struct {
	VariantID uuid.UUID
	Delta     int
	Type      enums.StockMovementType
	RelatedID *uuid.UUID
	Note      *string
}

type service struct {
	tx      txRunner
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.InventoryMetrics
}

// NewService wires the inventory service with its transaction runner and
// repository. Metrics and logger are optional.
func NewService(tx txRunner, repo Repository, logg *logger.Logger, m *metrics.InventoryMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{tx: tx, repo: repo, logg: logg, metrics: m}, nil
}

func (s *service) AdjustVariantStock(ctx context.Context, input AdjustStockInput) (*models.ProductVariant, error) {
	start := time.Now()
	var variant *models.ProductVariant
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		adjusted, err := s.AdjustVariantStockInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		variant = adjusted
		return nil
	})
	if s.metrics != nil {
		s.metrics.ObserveDuration(string(input.Type), time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return variant, nil
}

// AdjustVariantStockInTx applies one signed delta under the variant's row
// lock. The invariant check happens strictly before any write; the stock
// update and the ledger append are issued in the same scope so they commit
// or vanish together.
func (s *service) AdjustVariantStockInTx(ctx context.Context, tx *gorm.DB, input AdjustStockInput) (*models.ProductVariant, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction scope required")
	}

	repo := s.repo.WithTx(tx)

	variant, err := repo.FindVariantForUpdate(ctx, input.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
		}
		return nil, err
	}

	next := variant.Stock + input.Delta
	if next < 0 {
		s.observe(input.Type, "rejected")
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock cannot go negative").
			WithDetails(map[string]any{
				"variant_id": input.VariantID,
				"stock":      variant.Stock,
				"delta":      input.Delta,
			})
	}

	variant.Stock = next
	if err := repo.SaveVariant(ctx, variant); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ProductVariantID: input.VariantID,
		Change:           input.Delta,
		Type:             input.Type,
		RelatedID:        input.RelatedID,
		Note:             input.Note,
	}
	if err := repo.AppendMovement(ctx, movement); err != nil {
		return nil, err
	}

	if s.logg != nil {
		lctx := s.logg.WithVariantID(ctx, input.VariantID.String())
		lctx = s.logg.WithFields(lctx, map[string]any{
			"delta": input.Delta,
			"type":  input.Type,
			"stock": next,
		})
		s.logg.Info(lctx, "stock.adjusted")
	}
	s.observe(input.Type, "applied")

	return variant, nil
}

func (s *service) GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	variant, err := s.repo.FindVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
		}
		return nil, err
	}
	return variant, nil
}

func (s *service) ListMovements(ctx context.Context, variantID uuid.UUID, params pagination.Params) (*MovementListResult, error) {
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	result, err := s.repo.ListMovements(ctx, variantID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return result, nil
}

func (i AdjustStockInput) validate() error {
	if i.VariantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	if !i.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement type %q", i.Type))
	}
	// A zero delta is pointless but legal; it records an audit row without
	// changing stock.
	return nil
}

func (s *service) observe(typ enums.StockMovementType, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncAdjustment(string(typ), outcome)
}
