package main

import (
	"context"
	"time"
)

// background runs fn on its own goroutine with panic recovery. Used for the
// offer fan-outs kicked off by the admin handlers: best-effort work that must
// not hold up the HTTP response.
func (app *application) background(fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				app.logger.Errorw("background job panicked", "error", err)
			}
		}()
		fn()
	}()
}

func (app *application) markAbandonedCartsEveryHour() {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		run := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			n, err := app.store.Carts.MarkExpiredAsAbandoned(ctx)
			if err != nil {
				app.logger.Errorf("Error marking carts as abandoned: %v", err)
			} else if n > 0 {
				app.logger.Infof("Marked %d expired carts as abandoned", n)
			}
		}

		run()
		for range ticker.C {
			run()
		}
	}()
}
