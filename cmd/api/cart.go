package main

import (
	"errors"
	"net/http"

	"pasal/internal/domain/carts"
)

type addCartItemInput struct {
	VariantID int64 `json:"variant_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,min=1,max=99"`
}

type updateCartItemInput struct {
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

func (app *application) cartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, carts.ErrVariantNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, carts.ErrItemNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, carts.ErrInsufficient):
		app.conflictResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

// getCartHandler godoc
//
//	@Summary		View the active cart
//	@Description	Every line is priced live through the resolver, so offer edits show up on the next view without a cart write.
//	@Tags			cart
//	@Produce		json
//	@Success		200	{object}	carts.View
//	@Router			/store/cart [get]
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	view, err := app.store.Carts.GetView(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, view)
}

func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	var input addCartItemInput
	if err := readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Carts.AddItem(r.Context(), userID, input.VariantID, input.Quantity); err != nil {
		app.cartError(w, r, err)
		return
	}

	view, err := app.store.Carts.GetView(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, view)
}

// updateCartItemHandler sets a line's quantity; zero removes the line.
func (app *application) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	itemID, err := idParam(r, "itemID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input updateCartItemInput
	if err := readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Carts.UpdateItemQty(r.Context(), userID, itemID, input.Quantity); err != nil {
		app.cartError(w, r, err)
		return
	}

	view, err := app.store.Carts.GetView(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, view)
}

func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	itemID, err := idParam(r, "itemID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Carts.RemoveItem(r.Context(), userID, itemID); err != nil {
		app.cartError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	if err := app.store.Carts.Clear(r.Context(), userID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
