package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MotownC/TheRackHack/internal/cart"
	"github.com/MotownC/TheRackHack/internal/checkout"
	"github.com/MotownC/TheRackHack/internal/content"
	"github.com/MotownC/TheRackHack/internal/eventlog"
	"github.com/MotownC/TheRackHack/internal/fulfillment"
	h "github.com/MotownC/TheRackHack/internal/http"
	"github.com/MotownC/TheRackHack/internal/inventory"
	"github.com/MotownC/TheRackHack/internal/order"
	"github.com/MotownC/TheRackHack/internal/payment"
	"github.com/MotownC/TheRackHack/internal/rates"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	MongoURI     string
	MongoDB      string
	RedisAddr    string
	KafkaBrokers []string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string
	ShipEngineAPIKey    string
	ShipEngineURL       string

	ClientURL    string
	EventLogPath string
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("invalid DB_PORT: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "4242"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         dbPort,
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "rackhack"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "rackhack"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIURL:        getEnv("STRIPE_API_URL", "https://api.stripe.com"),
		ShipEngineAPIKey:    getEnv("SHIPENGINE_API_KEY", ""),
		ShipEngineURL:       getEnv("SHIPENGINE_URL", "https://api.shipengine.com"),

		ClientURL:    getEnv("CLIENT_URL", "http://localhost:5173"),
		EventLogPath: getEnv("EVENTLOG_PATH", "webhook-events.db"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	// Postgres holds checkout sessions, the payment outbox, orders and
	// products in one schema.
	cred := &checkout.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	checkoutRepo, err := checkout.NewRepository(cred)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer checkoutRepo.Close()

	if err := checkoutRepo.RunMigrations(cred); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	orderRepo := order.NewRepository(checkoutRepo.DB())
	productRepo := inventory.NewRepository(checkoutRepo.DB())

	// Mongo holds carts and page content.
	mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer mongoCancel()
	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("mongo disconnect: %v", err)
		}
	}()
	mongoDB := mongoClient.Database(cfg.MongoDB)
	if err := cart.CreateIndexes(mongoCtx, mongoDB); err != nil {
		log.Printf("failed to create cart indexes: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	eventLog, err := eventlog.Open(cfg.EventLogPath)
	if err != nil {
		log.Fatalf("failed to open event log: %v", err)
	}
	defer eventLog.Close()

	cartService := cart.NewService(
		cart.NewMongoRepository(mongoDB),
		cart.NewRedisCache(redisClient),
		productRepo,
	)
	contentRepo := content.NewMongoRepository(mongoDB)

	ratesClient := rates.NewClient(cfg.ShipEngineURL, cfg.ShipEngineAPIKey)
	paymentClient := payment.NewClient(cfg.StripeAPIURL, cfg.StripeSecretKey)

	checkoutService := checkout.NewService(checkoutRepo, ratesClient, paymentClient, cartService, cfg.ClientURL)
	fulfillmentService := fulfillment.NewService(checkoutRepo)

	// Background pipeline: outbox -> Kafka -> order recording.
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	poller := fulfillment.NewOutboxPoller(checkoutRepo, cfg.KafkaBrokers...)
	go poller.Run(bgCtx)

	consumer := fulfillment.NewConsumer(orderRepo, productRepo, cartService, checkoutRepo, cfg.KafkaBrokers...)
	defer consumer.Close()
	go consumer.Run(bgCtx)

	router := h.NewRouter(h.Handlers{
		Rates:    h.NewRatesHandler(ratesClient, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(checkoutService, paymentClient, fulfillmentService, cfg.RequestTimeout),
		Webhook:  h.NewWebhookHandler(cfg.StripeWebhookSecret, eventLog, fulfillmentService, cfg.RequestTimeout),
		Cart:     h.NewCartHandler(cartService, cfg.RequestTimeout),
		Products: h.NewProductHandler(productRepo, cfg.RequestTimeout),
		Orders:   h.NewOrdersHandler(orderRepo, cfg.RequestTimeout),
		Content:  h.NewContentHandler(contentRepo, cfg.RequestTimeout),
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
