package main

import (
	"errors"
	"net/http"

	"pasal/internal/domain/orders"
	"pasal/internal/params"

	"github.com/go-chi/chi/v5"
)

// checkoutHandler godoc
//
//	@Summary		Convert the active cart into an order
//	@Description	Prices every line through the resolver, snapshots the applied offer per line, decrements stock and marks the cart converted, all in one transaction.
//	@Tags			orders
//	@Produce		json
//	@Success		201	{object}	orders.Order
//	@Failure		409	{object}	error	"empty cart or insufficient stock"
//	@Router			/store/checkout [post]
func (app *application) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	order, err := app.store.Orders.CreateFromCart(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyCart), errors.Is(err, orders.ErrOutOfStock):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.logger.Infow("order placed",
		"reference", order.Reference,
		"user_id", userID,
		"total", order.Total,
	)

	app.jsonResponse(w, http.StatusCreated, order)
}

func (app *application) listMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	p := params.ParsePagination(r.URL.Query())

	list, total, err := app.store.Orders.ListByUser(r.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"orders":     list,
		"pagination": p,
	})
}

// getOrderHandler godoc
//
//	@Summary	Order detail by reference
//	@Tags		orders
//	@Produce	json
//	@Param		reference	path		string	true	"Order reference (PSL-...)"
//	@Success	200			{object}	orders.OrderDetail
//	@Failure	404			{object}	error
//	@Router		/store/orders/{reference} [get]
func (app *application) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	reference := chi.URLParam(r, "reference")

	detail, err := app.store.Orders.GetByReference(r.Context(), reference)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	// references are unguessable but still scoped to their owner
	if detail.Order.UserID != userID {
		app.notFoundResponse(w, r, orders.ErrNotFound)
		return
	}

	app.jsonResponse(w, http.StatusOK, detail)
}

func (app *application) cancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	orderID, err := idParam(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Orders.Cancel(r.Context(), userID, orderID); err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, orders.ErrNotCancelable):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"order_id": orderID,
		"status":   "cancelled",
	})
}

// adminListOrdersHandler godoc
//
//	@Summary	List orders (admin)
//	@Tags		admin-orders
//	@Produce	json
//	@Param		status	query	string	false	"Filter by status"	Enums(placed, cancelled, returned, delivered)
//	@Param		page	query	int		false	"Page number"		default(1)
//	@Param		limit	query	int		false	"Items per page"	default(15)
//	@Security	BasicAuth
//	@Router		/admin/orders [get]
func (app *application) adminListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	status := r.URL.Query().Get("status")

	list, total, err := app.store.Orders.ListAll(r.Context(), status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"orders":     list,
		"pagination": p,
	})
}

type orderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=placed cancelled returned delivered"`
}

func (app *application) adminUpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := idParam(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input orderStatusInput
	if err := readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Orders.UpdateStatus(r.Context(), orderID, input.Status); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"order_id": orderID,
		"status":   input.Status,
	})
}
