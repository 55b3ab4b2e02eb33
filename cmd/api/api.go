package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pasal/docs" //this is required to generate swagger docs
	"pasal/internal/fanout"
	"pasal/internal/pricing"
	"pasal/internal/ratelimiter"
	"pasal/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config    config
	store     store.Storage
	logger    *zap.SugaredLogger
	cld       *cloudinary.Cloudinary
	refresher *fanout.Refresher
	auditor   *pricing.Auditor
	limiter   *ratelimiter.FixedWindowRateLimiter
}

type config struct {
	addr         string
	env          string
	apiURL       string
	db           dbConfig
	auth         basicConfig
	orderRefSalt string
	fanout       fanoutConfig
	ratelimiter  ratelimiter.Config
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

type fanoutConfig struct {
	workers int
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Storefront (public + identified-customer routes)
		r.Route("/store", func(r chi.Router) {
			r.Get("/products", app.listProductsHandler)
			r.Get("/products/{slug}", app.getProductHandler)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", app.getCartHandler)
				r.Post("/items", app.addCartItemHandler)
				r.Patch("/items/{itemID}", app.updateCartItemHandler)
				r.Delete("/items/{itemID}", app.removeCartItemHandler)
				r.Delete("/", app.clearCartHandler)
			})

			r.Post("/checkout", app.checkoutHandler)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", app.listMyOrdersHandler)
				r.Get("/{reference}", app.getOrderHandler)
				r.Post("/{orderID}/cancel", app.cancelOrderHandler)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", app.listWishlistHandler)
				r.Post("/{variantID}", app.addWishlistHandler)
				r.Delete("/{variantID}", app.removeWishlistHandler)
			})
		})

		// Admin back-office
		r.Route("/admin", func(r chi.Router) {
			r.Use(app.BasicAuthMiddleware())

			r.Route("/brands", func(r chi.Router) {
				r.Post("/", app.createBrandHandler)
				r.Get("/", app.listBrandsHandler)
				r.Get("/{brandID}", app.getBrandHandler)
				r.Put("/{brandID}", app.updateBrandHandler)
				r.Patch("/{brandID}/offer", app.setBrandOfferHandler)
				r.Delete("/{brandID}", app.deleteBrandHandler)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", app.createCategoryHandler)
				r.Get("/", app.listCategoriesHandler)
				r.Get("/{categoryID}", app.getCategoryHandler)
				r.Put("/{categoryID}", app.updateCategoryHandler)
				r.Patch("/{categoryID}/offer", app.setCategoryOfferHandler)
				r.Delete("/{categoryID}", app.deleteCategoryHandler)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", app.createProductHandler)
				r.Get("/{productID}", app.adminGetProductHandler)
				r.Put("/{productID}", app.updateProductHandler)
				r.Patch("/{productID}/offer", app.setProductOfferHandler)
				r.Delete("/{productID}", app.deleteProductHandler)

				r.Post("/{productID}/images", app.uploadProductImageHandler)
				r.Delete("/{productID}/images/{imageID}", app.deleteProductImageHandler)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", app.adminListOrdersHandler)
				r.Patch("/{orderID}/status", app.adminUpdateOrderStatusHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr)
	return nil
}
