package enums

import "fmt"

// StockMovementType maps to the stock_movement_type_enum enum in Postgres.
// It tags why a variant's stock changed; it carries no validation logic of
// its own beyond membership in the closed set.
type StockMovementType string

const (
	StockMovementTypeSale       StockMovementType = "sale"
	StockMovementTypePOSSale    StockMovementType = "pos_sale"
	StockMovementTypeAdjustment StockMovementType = "adjustment"
	StockMovementTypeRestore    StockMovementType = "restore"
	StockMovementTypeCancel     StockMovementType = "cancel"
	StockMovementTypeRefund     StockMovementType = "refund"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementTypeSale,
	StockMovementTypePOSSale,
	StockMovementTypeAdjustment,
	StockMovementTypeRestore,
	StockMovementTypeCancel,
	StockMovementTypeRefund,
}

// IsValid reports whether the value matches the canonical movement type enum.
func (t StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockMovementType converts raw input into StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}
