package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luistorres-dev/tiendita-backend/pkg/db/models"
	"github.com/luistorres-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/luistorres-dev/tiendita-backend/pkg/errors"
	"github.com/luistorres-dev/tiendita-backend/pkg/pagination"
)

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(gormTxRunner{db: conn}, NewRepository(conn), nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestAdjustVariantStockAppliesDeltaAndAppendsMovement(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	variant := mustCreateVariant(t, conn, 5)
	related := uuid.New()

	updated, err := svc.AdjustVariantStock(ctx, AdjustStockInput{
		VariantID: variant.ID,
		Delta:     -3,
		Type:      enums.StockMovementTypeSale,
		RelatedID: &related,
	})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", updated.Stock)
	}

	var movements []models.StockMovement
	if err := conn.Where("product_variant_id = ?", variant.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected exactly one movement, got %d", len(movements))
	}
	m := movements[0]
	if m.Change != -3 || m.Type != enums.StockMovementTypeSale {
		t.Fatalf("unexpected movement %+v", m)
	}
	if m.RelatedID == nil || *m.RelatedID != related {
		t.Fatalf("expected related id %s, got %v", related, m.RelatedID)
	}
}

func TestAdjustVariantStockRejectionLeavesNoTrace(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	variant := mustCreateVariant(t, conn, 2)

	_, err := svc.AdjustVariantStock(ctx, AdjustStockInput{
		VariantID: variant.ID,
		Delta:     -3,
		Type:      enums.StockMovementTypeSale,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	var reloaded models.ProductVariant
	if err := conn.First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("rejected adjustment must not change stock, got %d", reloaded.Stock)
	}

	var count int64
	if err := conn.Model(&models.StockMovement{}).Where("product_variant_id = ?", variant.ID).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected adjustment must not create movements, found %d", count)
	}
}

func TestAdjustVariantStockNotFoundLeavesNoTrace(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.AdjustVariantStock(context.Background(), AdjustStockInput{
		VariantID: uuid.New(),
		Delta:     1,
		Type:      enums.StockMovementTypeRestore,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	var count int64
	if err := conn.Model(&models.StockMovement{}).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty ledger, found %d rows", count)
	}
}

func TestAdjustVariantStockValidation(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	_, err := svc.AdjustVariantStock(ctx, AdjustStockInput{Delta: 1, Type: enums.StockMovementTypeSale})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing variant id, got %v", err)
	}

	_, err = svc.AdjustVariantStock(ctx, AdjustStockInput{VariantID: uuid.New(), Delta: 1, Type: "checkout"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
}

func TestAdjustVariantStockZeroDeltaIsLegal(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	variant := mustCreateVariant(t, conn, 4)

	updated, err := svc.AdjustVariantStock(ctx, AdjustStockInput{
		VariantID: variant.ID,
		Delta:     0,
		Type:      enums.StockMovementTypeAdjustment,
	})
	if err != nil {
		t.Fatalf("zero delta should be accepted: %v", err)
	}
	if updated.Stock != 4 {
		t.Fatalf("expected stock unchanged at 4, got %d", updated.Stock)
	}

	var count int64
	if err := conn.Model(&models.StockMovement{}).Where("product_variant_id = ?", variant.ID).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 1 {
		t.Fatalf("zero delta still records an audit row, found %d", count)
	}
}

// failingLedgerRepo delegates everything to the real repository but fails the
// movement append, simulating an insert error after the stock write.
type failingLedgerRepo struct {
	Repository
}

func (f *failingLedgerRepo) WithTx(tx *gorm.DB) Repository {
	return &failingLedgerRepo{Repository: f.Repository.WithTx(tx)}
}

func (f *failingLedgerRepo) AppendMovement(ctx context.Context, movement *models.StockMovement) error {
	return errors.New("ledger append failed")
}

func TestAdjustVariantStockRollsBackStockWhenAppendFails(t *testing.T) {
	conn := newTestDB(t)
	repo := &failingLedgerRepo{Repository: NewRepository(conn)}
	svc, err := NewService(gormTxRunner{db: conn}, repo, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	variant := mustCreateVariant(t, conn, 8)

	_, err = svc.AdjustVariantStock(context.Background(), AdjustStockInput{
		VariantID: variant.ID,
		Delta:     -5,
		Type:      enums.StockMovementTypeSale,
	})
	if err == nil {
		t.Fatal("expected append failure to surface")
	}

	var reloaded models.ProductVariant
	if err := conn.First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 8 {
		t.Fatalf("stock write must roll back with the failed append, got %d", reloaded.Stock)
	}
}

func TestAdjustVariantStockInTxJoinsCallerScope(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	variant := mustCreateVariant(t, conn, 10)

	// Two adjustments inside one caller-owned transaction that aborts:
	// neither may land.
	err := conn.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.AdjustVariantStockInTx(ctx, tx, AdjustStockInput{
			VariantID: variant.ID, Delta: -4, Type: enums.StockMovementTypeSale,
		}); err != nil {
			return err
		}
		if _, err := svc.AdjustVariantStockInTx(ctx, tx, AdjustStockInput{
			VariantID: variant.ID, Delta: -4, Type: enums.StockMovementTypeSale,
		}); err != nil {
			return err
		}
		return errors.New("caller aborts")
	})
	if err == nil {
		t.Fatal("expected the caller abort to surface")
	}

	var reloaded models.ProductVariant
	if err := conn.First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 10 {
		t.Fatalf("aborted scope must leave stock untouched, got %d", reloaded.Stock)
	}

	// The same pair committed together lands both.
	if err := conn.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < 2; i++ {
			if _, err := svc.AdjustVariantStockInTx(ctx, tx, AdjustStockInput{
				VariantID: variant.ID, Delta: -4, Type: enums.StockMovementTypeSale,
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("grouped adjustments: %v", err)
	}

	if err := conn.First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("expected stock 2 after grouped commit, got %d", reloaded.Stock)
	}
}

func TestAdjustVariantStockSerializesContention(t *testing.T) {
	conn := newFileTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	variant := mustCreateVariant(t, conn, 10)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = svc.AdjustVariantStock(ctx, AdjustStockInput{
				VariantID: variant.ID,
				Delta:     -6,
				Type:      enums.StockMovementTypeSale,
			})
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
				t.Fatalf("unexpected error under contention: %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one rejected adjustment, got %d", failures)
	}

	var reloaded models.ProductVariant
	if err := conn.First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 4 {
		t.Fatalf("expected stock 4 after serialized adjustments, got %d", reloaded.Stock)
	}

	sum, err := NewRepository(conn).SumMovements(ctx, variant.ID)
	if err != nil {
		t.Fatalf("sum movements: %v", err)
	}
	if sum != -6 {
		t.Fatalf("ledger must record only the committed adjustment, sum %d", sum)
	}
}

func TestAdjustVariantStockLedgerReconciles(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	variant := mustCreateVariant(t, conn, 20)
	repo := NewRepository(conn)

	deltas := []int{-5, 3, -8, -10, 2, -4}
	committed := 0
	applied := 0
	for _, delta := range deltas {
		_, err := svc.AdjustVariantStock(ctx, AdjustStockInput{
			VariantID: variant.ID,
			Delta:     delta,
			Type:      enums.StockMovementTypeAdjustment,
		})
		if err == nil {
			committed += delta
			applied++
			continue
		}
		if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var reloaded models.ProductVariant
	if err := conn.First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 20+committed {
		t.Fatalf("stock %d does not reconcile with committed deltas %d", reloaded.Stock, committed)
	}
	if reloaded.Stock < 0 {
		t.Fatalf("stock went negative: %d", reloaded.Stock)
	}

	sum, err := repo.SumMovements(ctx, variant.ID)
	if err != nil {
		t.Fatalf("sum movements: %v", err)
	}
	if int(sum) != committed {
		t.Fatalf("ledger sum %d does not match committed deltas %d", sum, committed)
	}

	var count int64
	if err := conn.Model(&models.StockMovement{}).Where("product_variant_id = ?", variant.ID).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if int(count) != applied {
		t.Fatalf("expected %d ledger rows, got %d", applied, count)
	}
}

func TestAdjustVariantStockEndToEndExample(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	variant := mustCreateVariant(t, conn, 5)
	order1 := uuid.New()
	order2 := uuid.New()

	updated, err := svc.AdjustVariantStock(ctx, AdjustStockInput{
		VariantID: variant.ID,
		Delta:     -3,
		Type:      enums.StockMovementTypeSale,
		RelatedID: &order1,
	})
	if err != nil {
		t.Fatalf("first sale: %v", err)
	}
	if updated.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", updated.Stock)
	}

	_, err = svc.AdjustVariantStock(ctx, AdjustStockInput{
		VariantID: variant.ID,
		Delta:     -3,
		Type:      enums.StockMovementTypeSale,
		RelatedID: &order2,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var reloaded models.ProductVariant
	if err := conn.First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("stock must remain 2 after rejection, got %d", reloaded.Stock)
	}

	var count int64
	if err := conn.Model(&models.StockMovement{}).Where("related_id = ?", order2).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected sale must not appear in the ledger, found %d rows", count)
	}
}

func TestGetVariantAndListMovements(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	variant := mustCreateVariant(t, conn, 3)

	got, err := svc.GetVariant(ctx, variant.ID)
	if err != nil {
		t.Fatalf("get variant: %v", err)
	}
	if got.ID != variant.ID || got.Stock != 3 {
		t.Fatalf("unexpected variant %+v", got)
	}

	if _, err := svc.GetVariant(ctx, uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.GetVariant(ctx, uuid.Nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.AdjustVariantStock(ctx, AdjustStockInput{
		VariantID: variant.ID, Delta: -1, Type: enums.StockMovementTypeSale,
	}); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	page, err := svc.ListMovements(ctx, variant.ID, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(page.Movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(page.Movements))
	}
}
