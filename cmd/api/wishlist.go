package main

import (
	"errors"
	"net/http"

	"pasal/internal/domain/wishlist"
)

// listWishlistHandler godoc
//
//	@Summary		List the customer's wishlist
//	@Description	Entries are priced at read time, so they always show current offers.
//	@Tags			wishlist
//	@Produce		json
//	@Success		200	{array}	wishlist.Entry
//	@Router			/store/wishlist [get]
func (app *application) listWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	entries, err := app.store.Wishlist.List(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, entries)
}

func (app *application) addWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	variantID, err := idParam(r, "variantID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Wishlist.Add(r.Context(), userID, variantID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]any{"variant_id": variantID})
}

func (app *application) removeWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.customerID(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	variantID, err := idParam(r, "variantID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Wishlist.Remove(r.Context(), userID, variantID); err != nil {
		if errors.Is(err, wishlist.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
