package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luistorres-dev/tiendita-backend/api/responses"
	"github.com/luistorres-dev/tiendita-backend/api/validators"
	"github.com/luistorres-dev/tiendita-backend/internal/inventory"
	"github.com/luistorres-dev/tiendita-backend/pkg/db/models"
	"github.com/luistorres-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/luistorres-dev/tiendita-backend/pkg/errors"
	"github.com/luistorres-dev/tiendita-backend/pkg/logger"
	"github.com/luistorres-dev/tiendita-backend/pkg/pagination"
)

// AdjustVariantStock applies a signed stock delta to a variant and records
// the movement.
func AdjustVariantStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		variantID, err := parseVariantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toAdjustInput(variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.AdjustVariantStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, variant)
	}
}

// GetVariant returns a single variant with its current stock level.
func GetVariant(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		variantID, err := parseVariantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.GetVariant(r.Context(), variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, variant)
	}
}

// ListVariantMovements returns a variant's movement ledger, newest first.
func ListVariantMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		variantID, err := parseVariantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		page, err := svc.ListMovements(r.Context(), variantID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movementListResponse{
			Movements:  page.Movements,
			NextCursor: page.NextCursor,
		})
	}
}

type adjustStockRequest struct {
	Delta     int     `json:"delta"`
	Type      string  `json:"type" validate:"required"`
	RelatedID *string `json:"related_id,omitempty" validate:"omitempty,uuid"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

func (r adjustStockRequest) toAdjustInput(variantID uuid.UUID) (inventory.AdjustStockInput, error) {
	movementType, err := enums.ParseStockMovementType(strings.TrimSpace(r.Type))
	if err != nil {
		return inventory.AdjustStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type")
	}

	input := inventory.AdjustStockInput{
		VariantID: variantID,
		Delta:     r.Delta,
		Type:      movementType,
		Note:      r.Note,
	}

	if r.RelatedID != nil {
		related, err := uuid.Parse(*r.RelatedID)
		if err != nil {
			return inventory.AdjustStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid related id")
		}
		input.RelatedID = &related
	}

	return input, nil
}

type movementListResponse struct {
	Movements  []models.StockMovement `json:"movements"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

func parseVariantID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "variantID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id")
	}
	return id, nil
}
