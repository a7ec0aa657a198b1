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

	"storefront/docs" //this is required to serve the generated swagger docs
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain/orders"
	"storefront/internal/domain/storage"
	"storefront/internal/mailer"
	"storefront/internal/ratelimiter"
	"storefront/internal/upstream"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	checkouts     *checkout.Manager
	catalog       *catalog.Service
	upstream      *upstream.Client
	refs          *orders.ReferenceGenerator
	logger        *zap.SugaredLogger
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	db          dbConfig
	redis       redisConfig
	upstream    upstreamConfig
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
	checkout    checkoutConfig
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type redisConfig struct {
	addr     string
	password string
	db       int
	enabled  bool
}

type upstreamConfig struct {
	baseURL string
	apiKey  string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type basicConfig struct {
	user string
	pass string
}

type tokenConfig struct {
	secret     string
	sessionExp time.Duration
	iss        string
}

type checkoutConfig struct {
	currency            string
	fallbackEmailDomain string
	paymentMethodID     string
	paymentMethodTitle  string
	captureDelay        time.Duration
	cartTTL             time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		// Public routes
		r.Post("/session", app.createSessionHandler)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Get("/{productID}", app.getProductHandler)
		})

		// Everything below acts on the caller's cart session
		r.Route("/store", func(r chi.Router) {
			r.Use(app.SessionTokenMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", app.getCartHandler)
				r.Post("/items", app.addCartItemHandler)
				r.Patch("/items/{lineKey}", app.updateCartItemHandler)
				r.Delete("/items/{lineKey}", app.removeCartItemHandler)
				r.Delete("/", app.clearCartHandler)
			})

			r.Route("/coupon", func(r chi.Router) {
				r.Post("/", app.applyCouponHandler)
				r.Delete("/", app.removeCouponHandler)
			})

			r.Route("/shipping", func(r chi.Router) {
				r.Get("/", app.getShippingHandler)
				r.Post("/select", app.selectShippingRateHandler)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/address", app.setAddressHandler)
				r.Get("/totals", app.getTotalsHandler)
				r.Post("/order", app.placeOrderHandler)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", app.listOrdersHandler)
				r.Get("/{orderID}", app.getOrderHandler)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
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

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
