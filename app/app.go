package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"supernova/config"
	"supernova/database"
	"supernova/events"
	"supernova/middleware"
	"supernova/repository"
	"supernova/routes"
	"supernova/services"
	"supernova/telemetry"
)

const shutdownTimeout = 10 * time.Second

type closer struct {
	name string
	fn   func(context.Context) error
}

// App owns the resources of one service process.
type App struct {
	cfg     config.Config
	engine  *gin.Engine
	db      *mongo.Database
	closers []closer
}

// MustNew loads configuration for service, installs logging and tracing,
// and builds the HTTP engine. It exits the process on fatal misconfiguration.
func MustNew(service string) *App {
	config.LoadEnv()
	cfg := config.Load(service)
	config.SetupLogger(cfg)

	if cfg.JWTSecret == "" {
		fatal("JWT_SECRET is not set")
	}

	a := &App{cfg: cfg}

	shutdownTracing, err := telemetry.Init(service, cfg.JaegerURL)
	if err != nil {
		fatal("telemetry init failed", "error", err)
	}
	a.OnShutdown("tracer provider", shutdownTracing)

	a.engine = routes.NewEngine(cfg)
	return a
}

func (a *App) Config() config.Config { return a.cfg }

func (a *App) Engine() *gin.Engine { return a.engine }

// OnShutdown registers fn to run after the HTTP server has stopped, in
// reverse registration order.
func (a *App) OnShutdown(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// database connects on first use and ensures the indexes of collection.
// It returns nil when the service runs on the memory store.
func (a *App) database(collection string) *mongo.Database {
	if a.cfg.Store == config.StoreMemory {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.db == nil {
		client, db, err := database.ConnectMongo(ctx, a.cfg.MongoURI, a.cfg.DBName)
		if err != nil {
			fatal("mongo connect failed", "error", err)
		}
		a.db = db
		a.OnShutdown("mongo", client.Disconnect)
	}
	if err := database.EnsureIndexes(ctx, a.db, collection); err != nil {
		fatal("mongo index setup failed", "collection", collection, "error", err)
	}
	return a.db
}

func (a *App) Users() repository.UserRepository {
	if db := a.database(database.UserCollection); db != nil {
		return repository.NewMongoUsers(db)
	}
	return repository.NewMemoryUsers()
}

func (a *App) Products() repository.ProductRepository {
	if db := a.database(database.ProductCollection); db != nil {
		return repository.NewMongoProducts(db)
	}
	return repository.NewMemoryProducts()
}

func (a *App) Carts() repository.CartRepository {
	if db := a.database(database.CartCollection); db != nil {
		return repository.NewMongoCarts(db)
	}
	return repository.NewMemoryCarts()
}

func (a *App) Orders() repository.OrderRepository {
	if db := a.database(database.OrderCollection); db != nil {
		return repository.NewMongoOrders(db)
	}
	return repository.NewMemoryOrders()
}

func (a *App) Payments() repository.PaymentRepository {
	if db := a.database(database.PaymentCollection); db != nil {
		return repository.NewMongoPayments(db)
	}
	return repository.NewMemoryPayments()
}

// Denylist prefers Redis so that every service sees the same revoked
// tokens, then Mongo, then process memory.
func (a *App) Denylist() repository.Denylist {
	if a.cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			fatal("redis connect failed", "addr", a.cfg.RedisAddr, "error", err)
		}
		a.OnShutdown("redis", func(context.Context) error { return rdb.Close() })
		return repository.NewRedisDenylist(rdb)
	}
	if db := a.database(database.BlacklistCollection); db != nil {
		return repository.NewMongoDenylist(db)
	}
	slog.Warn("token denylist is process local")
	return repository.NewMemoryDenylist()
}

func (a *App) Verifier(denylist repository.Denylist) *middleware.Verifier {
	return middleware.NewVerifier(a.cfg.JWTSecret, denylist)
}

// Events returns an AMQP publisher when AMQP_URL is set.
func (a *App) Events() services.EventPublisher {
	if a.cfg.AMQPURL == "" {
		return events.Nop{}
	}
	pub, err := events.NewAMQPPublisher(a.cfg.AMQPURL, a.cfg.Service)
	if err != nil {
		fatal("amqp connect failed", "error", err)
	}
	a.OnShutdown("amqp", func(context.Context) error { return pub.Close() })
	return pub
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting HTTP server", "port", a.cfg.Port, "store", a.cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.Error("close failed", "resource", c.name, "error", err)
		}
	}
	slog.Info("Application shutdown complete")
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
