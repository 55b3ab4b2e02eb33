package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pasal/internal/domain/catalog"
	"pasal/internal/params"

	"github.com/go-chi/chi/v5"
)

func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(slug, "-")
	slug = regexp.MustCompile(`^-|-$`).ReplaceAllString(slug, "")
	return slug
}

func isValidSlug(slug string) bool {
	// Alphanumeric and hyphens only, 3-50 chars
	return regexp.MustCompile(`^[a-z0-9-]{3,50}$`).MatchString(slug)
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

type brandInput struct {
	Name       string  `json:"name" validate:"required,min=2,max=100"`
	Slug       string  `json:"slug"`
	BrandOffer float64 `json:"brand_offer" validate:"min=0,max=100"`
	IsActive   bool    `json:"is_active"`
}

// createBrandHandler godoc
//
//	@Summary	Create a brand
//	@Tags		admin-brands
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		brandInput	true	"Brand payload"
//	@Success	201		{object}	catalog.Brand
//	@Failure	400		{object}	error
//	@Failure	409		{object}	error
//	@Security	BasicAuth
//	@Router		/admin/brands [post]
func (app *application) createBrandHandler(w http.ResponseWriter, r *http.Request) {
	var input brandInput
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

	brand := &catalog.Brand{
		Name:       input.Name,
		Slug:       input.Slug,
		BrandOffer: input.BrandOffer,
		IsActive:   input.IsActive,
	}
	if err := app.store.Catalog.CreateBrand(ctx, brand); err != nil {
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			app.conflictResponse(w, r, fmt.Errorf("brand with slug '%s' already exists", input.Slug))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, brand)
}

func (app *application) getBrandHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	brand, err := app.store.Catalog.GetBrandByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, brand)
}

// listBrandsHandler godoc
//
//	@Summary	List brands (admin)
//	@Tags		admin-brands
//	@Produce	json
//	@Param		include_inactive	query	bool	false	"Include inactive brands"
//	@Param		page				query	int		false	"Page number"		default(1)
//	@Param		limit				query	int		false	"Items per page"	default(15)
//	@Security	BasicAuth
//	@Router		/admin/brands [get]
func (app *application) listBrandsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	brands, total, err := app.store.Catalog.ListBrands(r.Context(), includeInactive, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"brands":     brands,
		"pagination": p,
	})
}

func (app *application) updateBrandHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input brandInput
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

	brand := &catalog.Brand{ID: id, Name: input.Name, Slug: input.Slug, IsActive: input.IsActive}
	if err := app.store.Catalog.UpdateBrand(r.Context(), brand); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, catalog.ErrDuplicateSlug):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, brand)
}

type offerInput struct {
	Offer float64 `json:"offer" validate:"min=0,max=100"`
}

// setBrandOfferHandler godoc
//
//	@Summary		Set a brand-wide offer percentage
//	@Description	Stores the new offer and, when the value changed, refreshes the cached prices of every product of the brand in the background.
//	@Tags			admin-brands
//	@Accept			json
//	@Produce		json
//	@Param			brandID	path		int			true	"Brand ID"
//	@Param			payload	body		offerInput	true	"Offer percentage"
//	@Success		200		{object}	map[string]any
//	@Security		BasicAuth
//	@Router			/admin/brands/{brandID}/offer [patch]
func (app *application) setBrandOfferHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
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

	changed, err := app.store.Catalog.SetBrandOffer(r.Context(), id, input.Offer)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	// cached prices refresh best-effort; the offer edit already succeeded
	if changed {
		app.background(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := app.refresher.RefreshBrand(ctx, id); err != nil {
				app.logger.Errorw("brand offer fan-out failed", "brand_id", id, "error", err)
			}
		})
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"brand_id": id,
		"offer":    input.Offer,
		"changed":  changed,
	})
}

func (app *application) deleteBrandHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Catalog.SoftDeleteBrand(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
