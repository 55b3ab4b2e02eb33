package main

import (
	"errors"
	"net/http"

	"pasal/internal/domain/catalog"
	"pasal/internal/params"

	"github.com/go-chi/chi/v5"
)

// listProductsHandler godoc
//
//	@Summary		List product cards
//	@Description	Listed, non-deleted products with their cached average final price and the best offer currently in effect.
//	@Tags			storefront
//	@Produce		json
//	@Param			category	query	string	false	"Filter by category slug"
//	@Param			page		query	int		false	"Page number"		default(1)
//	@Param			limit		query	int		false	"Items per page"	default(15)
//	@Success		200			{object}	map[string]any
//	@Router			/store/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	categorySlug := r.URL.Query().Get("category")

	cards, total, err := app.store.Catalog.ListProductCards(r.Context(), categorySlug, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"products":   cards,
		"pagination": p,
	})
}

// getProductHandler godoc
//
//	@Summary		Product detail page payload
//	@Description	Every variant priced through the resolver, with the dataset attributes the page embeds for client-side recomputation.
//	@Tags			storefront
//	@Produce		json
//	@Param			slug	path		string	true	"Product slug"
//	@Success		200		{object}	catalog.ProductView
//	@Failure		404		{object}	error
//	@Router			/store/products/{slug} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !isValidSlug(slug) {
		app.badRequestResponse(w, r, errors.New("invalid slug format"))
		return
	}

	product, err := app.store.Catalog.GetProductBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	images, err := app.store.Catalog.ListProductImages(r.Context(), product.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	view := product.View(images)

	// observe-only: compares the cached final prices against a fresh
	// resolve and logs drift, never alters the response
	for _, pv := range product.AuditPayloads() {
		app.auditor.Check(pv)
	}

	app.jsonResponse(w, http.StatusOK, view)
}
