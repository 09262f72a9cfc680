package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/warehouse-backend/api/responses"
	"github.com/stockroomhq/warehouse-backend/api/validators"
	"github.com/stockroomhq/warehouse-backend/internal/inventory"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
)

type documentItemRequest struct {
	ResourceID string          `json:"resource_id" validate:"required,uuid4"`
	UnitID     string          `json:"unit_id" validate:"required,uuid4"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type documentRequest struct {
	Number string                `json:"number" validate:"required"`
	Date   time.Time             `json:"date" validate:"required"`
	Items  []documentItemRequest `json:"items" validate:"dive"`
}

func (p documentRequest) toInput() (inventory.DocumentInput, error) {
	items := make([]inventory.DocumentItemInput, 0, len(p.Items))
	for _, item := range p.Items {
		resourceID, err := uuid.Parse(item.ResourceID)
		if err != nil {
			return inventory.DocumentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid resource id")
		}
		unitID, err := uuid.Parse(item.UnitID)
		if err != nil {
			return inventory.DocumentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit id")
		}
		items = append(items, inventory.DocumentItemInput{
			ResourceID: resourceID,
			UnitID:     unitID,
			Quantity:   item.Quantity,
		})
	}
	return inventory.DocumentInput{Number: p.Number, Date: p.Date, Items: items}, nil
}

func documentIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "documentId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document id")
	}
	return id, nil
}

// CreateReceipt handles receipt creation, crediting balances on commit.
func CreateReceipt(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload documentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.CreateReceipt(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// EditReceipt replaces a draft receipt's header and items.
func EditReceipt(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := documentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload documentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.EditReceipt(r.Context(), id, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"id": id})
	}
}

// CreateShipment records a draft shipment without touching balances.
func CreateShipment(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload documentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.CreateShipment(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// SignShipment debits stock for a draft shipment.
func SignShipment(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := documentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SignShipment(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"id": id, "state": enums.DocumentStateSigned})
	}
}

// UnsignShipment reverts a signed shipment back to draft, restoring stock.
func UnsignShipment(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := documentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UnsignShipment(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"id": id, "state": enums.DocumentStateDraft})
	}
}

// GetDocument returns one receipt or shipment with resolved item names.
func GetDocument(svc inventory.Service, kind enums.DocumentKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := documentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetDocument(r.Context(), id, kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// ListDocuments returns receipts or shipments, optionally filtered by state.
func ListDocuments(svc inventory.Service, kind enums.DocumentKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var state *enums.DocumentState
		if raw := r.URL.Query().Get("state"); raw != "" {
			parsed, err := enums.ParseDocumentState(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state filter"))
				return
			}
			state = &parsed
		}

		views, err := svc.ListDocuments(r.Context(), kind, state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

// ListBalances returns every on-hand balance with resolved names.
func ListBalances(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.ListBalances(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}
