package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pasal/internal/domain/catalog"
	"pasal/internal/params"
)

type categoryInput struct {
	Name          string  `json:"name" validate:"required,min=2,max=100"`
	Slug          string  `json:"slug"`
	CategoryOffer float64 `json:"category_offer" validate:"min=0,max=100"`
	IsActive      bool    `json:"is_active"`
}

func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
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

	cat := &catalog.Category{
		Name:          input.Name,
		Slug:          input.Slug,
		CategoryOffer: input.CategoryOffer,
		IsActive:      input.IsActive,
	}
	if err := app.store.Catalog.CreateCategory(r.Context(), cat); err != nil {
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			app.conflictResponse(w, r, fmt.Errorf("category with slug '%s' already exists", input.Slug))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, cat)
}

func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	cat, err := app.store.Catalog.GetCategoryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, cat)
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	categories, total, err := app.store.Catalog.ListCategories(r.Context(), includeInactive, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"categories": categories,
		"pagination": p,
	})
}

func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input categoryInput
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

	cat := &catalog.Category{ID: id, Name: input.Name, Slug: input.Slug, IsActive: input.IsActive}
	if err := app.store.Catalog.UpdateCategory(r.Context(), cat); err != nil {
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

	app.jsonResponse(w, http.StatusOK, cat)
}

// setCategoryOfferHandler godoc
//
//	@Summary		Set a category-wide offer percentage
//	@Description	Stores the new offer and, when the value changed, refreshes the cached prices of every product in the category in the background.
//	@Tags			admin-categories
//	@Accept			json
//	@Produce		json
//	@Param			categoryID	path		int			true	"Category ID"
//	@Param			payload		body		offerInput	true	"Offer percentage"
//	@Success		200			{object}	map[string]any
//	@Security		BasicAuth
//	@Router			/admin/categories/{categoryID}/offer [patch]
func (app *application) setCategoryOfferHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
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

	changed, err := app.store.Catalog.SetCategoryOffer(r.Context(), id, input.Offer)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if changed {
		app.background(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := app.refresher.RefreshCategory(ctx, id); err != nil {
				app.logger.Errorw("category offer fan-out failed", "category_id", id, "error", err)
			}
		})
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"category_id": id,
		"offer":       input.Offer,
		"changed":     changed,
	})
}

func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Catalog.SoftDeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
