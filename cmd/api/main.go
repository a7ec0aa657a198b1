package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/db"
	"storefront/internal/domain/orders"
	"storefront/internal/domain/storage"
	"storefront/internal/mailer"
	"storefront/internal/ratelimiter"
	"storefront/internal/upstream"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "0.3.0"

// NewLogger creates a colored console zap logger.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func envInt(key string, fallback int) int {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		fmt.Println("Invalid", key, "- defaulting to", fallback)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
		fmt.Println("Invalid", key, "- defaulting to", fallback)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		fmt.Println("Invalid", key, "- defaulting to", fallback)
	}
	return fallback
}

func envString(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return fallback
}

//	@title			Storefront API
//	@description	Cart, pricing and checkout API for the headless storefront.

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config{
		addr:        envString("ADDR", ":8080"),
		env:         envString("ENV", "development"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		frontendURL: envString("FRONTEND_URL", "http://localhost:3000"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(envInt("DB_MAX_CONNS", 25)),
			maxIdleTime: envString("DB_MAX_IDLE_TIME", "15m"),
		},
		redis: redisConfig{
			addr:     envString("REDIS_ADDR", "localhost:6379"),
			password: os.Getenv("REDIS_PASSWORD"),
			db:       envInt("REDIS_DB", 0),
			enabled:  envBool("REDIS_ENABLED", true),
		},
		upstream: upstreamConfig{
			baseURL: os.Getenv("UPSTREAM_BASE_URL"),
			apiKey:  os.Getenv("UPSTREAM_API_KEY"),
		},
		mail: mailConfig{
			fromEmail: os.Getenv("SMTP_FROM_EMAIL"),
			smtp: smtpConfig{
				host:     os.Getenv("SMTP_HOST"),
				port:     envInt("SMTP_PORT", 587),
				username: os.Getenv("SMTP_USERNAME"),
				password: os.Getenv("SMTP_PASSWORD"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:     os.Getenv("AUTH_TOKEN_SECRET"),
				sessionExp: envDuration("SESSION_TOKEN_EXP", time.Hour*24*30),
				iss:        "storefront",
			},
		},
		rateLimiter: ratelimiter.Config{
			RequestsPerTimeFrame: envInt("RATELIMITER_REQUESTS_COUNT", 200),
			TimeFrame:            5 * time.Second,
			Enabled:              envBool("RATE_LIMITER_ENABLED", false),
		},
		checkout: checkoutConfig{
			currency:            envString("STORE_CURRENCY", "BDT"),
			fallbackEmailDomain: envString("FALLBACK_EMAIL_DOMAIN", "example.com"),
			paymentMethodID:     envString("PAYMENT_METHOD_ID", "cod"),
			paymentMethodTitle:  envString("PAYMENT_METHOD_TITLE", "Cash on delivery"),
			captureDelay:        envDuration("ABANDONED_CAPTURE_DELAY", 30*time.Second),
			cartTTL:             envDuration("CART_TTL", 72*time.Hour),
		},
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	store := storage.NewContainer(pool, cfg.checkout.cartTTL)

	// Upstream store proxy
	upstreamClient := upstream.NewClient(upstream.Config{
		BaseURL: cfg.upstream.baseURL,
		APIKey:  cfg.upstream.apiKey,
	})

	// Product cache; the catalog tolerates a dead redis, so startup does not
	// ping it
	var productCache cache.ProductCache
	if cfg.redis.enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.redis.addr,
			Password: cfg.redis.password,
			DB:       cfg.redis.db,
		})
		defer rdb.Close()
		productCache = cache.NewRedisCache(rdb)
		logger.Info("redis product cache enabled")
	} else {
		productCache = cache.NewNoopCache()
	}

	catalogService := catalog.NewService(upstreamClient, productCache, logger)

	// Mailer
	mailClient := mailer.NewGomailSender(
		cfg.mail.fromEmail,
		cfg.mail.smtp.host,
		cfg.mail.smtp.port,
		cfg.mail.smtp.username,
		cfg.mail.smtp.password,
	)

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.sessionExp,
	)

	refs, err := orders.NewReferenceGenerator(envString("ORDER_REF_SALT", "storefront"))
	if err != nil {
		logger.Fatal(err)
	}

	app := &application{
		config:        cfg,
		store:         store,
		checkouts:     checkout.NewManager(),
		catalog:       catalogService,
		upstream:      upstreamClient,
		refs:          refs,
		logger:        logger,
		mailer:        mailClient,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	// Metrics collected at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	app.markAbandonedCartsEvery(30 * time.Minute)
	app.syncAbandonedCheckoutsEvery(15 * time.Minute)
	app.evictIdleCheckoutsEvery(time.Hour)

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
