package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pasal/internal/domain/catalog"
	"pasal/internal/pricing"
)

type variantInput struct {
	Size         string  `json:"size" validate:"required,min=1,max=20"`
	Stock        int     `json:"stock" validate:"min=0"`
	BasePrice    float64 `json:"base_price" validate:"min=0"`
	VariantOffer float64 `json:"variant_specific_offer" validate:"min=0,max=100"`
}

type productInput struct {
	Name         string         `json:"name" validate:"required,min=2,max=200"`
	Slug         string         `json:"slug"`
	Description  *string        `json:"description"`
	RegularPrice float64        `json:"regular_price" validate:"gt=0"`
	ProductOffer float64        `json:"product_offer" validate:"min=0,max=100"`
	CategoryID   *int64         `json:"category_id"`
	BrandID      *int64         `json:"brand_id"`
	IsListed     bool           `json:"is_listed"`
	Variants     []variantInput `json:"variants" validate:"dive"`
}

func (in *productInput) toProduct() *catalog.Product {
	p := &catalog.Product{
		Name:         in.Name,
		Slug:         in.Slug,
		Description:  in.Description,
		RegularPrice: in.RegularPrice,
		ProductOffer: in.ProductOffer,
		CategoryID:   in.CategoryID,
		BrandID:      in.BrandID,
		IsListed:     in.IsListed,
	}
	for _, v := range in.Variants {
		p.Variants = append(p.Variants, catalog.Variant{
			Size:         v.Size,
			Stock:        v.Stock,
			BasePrice:    v.BasePrice,
			VariantOffer: v.VariantOffer,
		})
	}
	return p
}

// saveProductError maps store failures onto responses. The pricing
// ValidationError surfaces verbatim so the admin form can show which variant
// row broke the base < regular invariant.
func (app *application) saveProductError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *pricing.ValidationError
	switch {
	case errors.As(err, &verr):
		app.unprocessableEntityResponse(w, r, verr)
	case errors.Is(err, catalog.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, catalog.ErrDuplicateSlug):
		app.conflictResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

// createProductHandler godoc
//
//	@Summary		Create a product with its variant batch
//	@Description	Validates variant pricing, recomputes total stock and caches each variant's final price in one transaction.
//	@Tags			admin-products
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		productInput	true	"Product payload"
//	@Success		201		{object}	catalog.Product
//	@Failure		422		{object}	error	"variant base price not below regular price"
//	@Security		BasicAuth
//	@Router			/admin/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var input productInput
	if err := readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if input.Slug == "" {
		input.Slug = generateSlug(input.Name)
	}
	if !isValidSlug(input.Slug) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	product := input.toProduct()
	if err := app.store.Catalog.CreateProduct(ctx, product); err != nil {
		app.saveProductError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, product)
}

// updateProductHandler replaces the whole variant batch, same as the admin
// form submits it.
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input productInput
	if err := readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if input.Slug == "" {
		input.Slug = generateSlug(input.Name)
	}
	if !isValidSlug(input.Slug) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	product := input.toProduct()
	product.ID = id
	if err := app.store.Catalog.UpdateProduct(ctx, product); err != nil {
		app.saveProductError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, product)
}

func (app *application) adminGetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.store.Catalog.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, product)
}

// setProductOfferHandler stores a product-level offer. Only this product's
// cached prices depend on it, so the recache runs inline, no fan-out needed.
func (app *application) setProductOfferHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input offerInput
	if err := readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	changed, err := app.store.Catalog.SetProductOffer(r.Context(), id, input.Offer)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if changed {
		if err := app.store.Catalog.RecachePrices(r.Context(), id); err != nil {
			// offer is stored; stale cache self-corrects on the next save
			app.logger.Errorw("product price recache failed", "product_id", id, "error", err)
		}
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"product_id": id,
		"offer":      input.Offer,
		"changed":    changed,
	})
}

func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Catalog.SoftDeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
