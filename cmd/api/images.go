package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pasal/internal/domain/catalog"

	"github.com/google/uuid"
)

func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	// reset so later reads start from byte 0
	if seeker, ok := file.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("seek reset: %w", err)
		}
	}
	return mime, nil
}

// uploadProductImageHandler godoc
//
//	@Summary	Upload a product image
//	@Tags		admin-products
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		productID	path		int		true	"Product ID"
//	@Param		image		formData	file	true	"Image file (jpeg, png or webp)"
//	@Param		is_primary	formData	bool	false	"Mark as primary image"
//	@Param		sort_order	formData	int		false	"Sort order"
//	@Success	201			{object}	catalog.ProductImage
//	@Security	BasicAuth
//	@Router		/admin/products/{productID}/images [post]
func (app *application) uploadProductImageHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	const maxBytes = 8 * 1024 * 1024 // 8MB
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}

	isPrimary := strings.ToLower(r.FormValue("is_primary")) == "true"
	sortOrder := 0
	if s := r.FormValue("sort_order"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			sortOrder = v
		}
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("image file is required"))
		return
	}
	defer file.Close()

	mime, err := sniffMIME(file)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("sniff mime: %w", err))
		return
	}
	allowed := map[string]bool{"image/jpeg": true, "image/png": true, "image/webp": true}
	if !allowed[mime] {
		app.badRequestResponse(w, r, fmt.Errorf("invalid image type: %s", mime))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	publicID := fmt.Sprintf("product_%d_%s", productID, uuid.NewString())
	imageURL, err := app.uploadToCloudinaryWithID(ctx, file, publicID)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("failed to upload image: %w", err))
		return
	}

	img := &catalog.ProductImage{
		ProductID: productID,
		URL:       imageURL,
		IsPrimary: isPrimary,
		SortOrder: sortOrder,
	}
	if err := app.store.Catalog.AddProductImage(ctx, img); err != nil {
		// cleanup the orphaned upload
		app.background(func() {
			if derr := app.deletePhotoFromCloudinary(imageURL); derr != nil {
				app.logger.Errorw("orphaned upload cleanup failed", "url", imageURL, "error", derr)
			}
		})
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, fmt.Errorf("failed to save image: %w", err))
		return
	}

	app.jsonResponse(w, http.StatusCreated, img)
}

func (app *application) deleteProductImageHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	imageID, err := idParam(r, "imageID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	images, err := app.store.Catalog.ListProductImages(r.Context(), productID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	var target *catalog.ProductImage
	for _, img := range images {
		if img.ID == imageID {
			target = img
			break
		}
	}
	if target == nil {
		app.notFoundResponse(w, r, catalog.ErrNotFound)
		return
	}

	if err := app.store.Catalog.DeleteProductImage(r.Context(), imageID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	// remove the asset best-effort; the DB row is already gone
	imageURL := target.URL
	app.background(func() {
		if derr := app.deletePhotoFromCloudinary(imageURL); derr != nil {
			app.logger.Errorw("cloudinary delete failed", "url", imageURL, "error", derr)
		}
	})

	w.WriteHeader(http.StatusNoContent)
}
