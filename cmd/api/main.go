package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shopfront/orders/internal/catalog"
	"github.com/shopfront/orders/internal/config"
	"github.com/shopfront/orders/internal/httpx"
	kafkax "github.com/shopfront/orders/internal/kafka"
	"github.com/shopfront/orders/internal/logging"
	"github.com/shopfront/orders/internal/metrics"
	"github.com/shopfront/orders/internal/notify"
	"github.com/shopfront/orders/internal/orders"
	"github.com/shopfront/orders/internal/payments"
	"github.com/shopfront/orders/internal/postgres"
	"github.com/shopfront/orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatal("db schema", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (order event stream)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, log, 1024)
	prod.Start()

	m := metrics.New()

	// Notifications
	dispatcher := &notify.Dispatcher{
		Sender:      notify.NewMailer(cfg.MailerURL),
		AdminEmails: cfg.AdminEmails,
		Log:         log,
		Metrics:     m,
	}

	// Repos & services
	orderRepo := &orders.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	statusCache := &redisx.StatusCache{R: rdb}

	creator := &orders.Service{
		Store:    orderRepo,
		Catalog:  catalogRepo,
		Notify:   dispatcher,
		Events:   prod,
		Producer: cfg.ServiceName,
		Log:      log,
		Metrics:  m,
	}
	admin := &orders.AdminService{
		Store:    orderRepo,
		Notify:   dispatcher,
		Events:   prod,
		Cache:    statusCache,
		Producer: cfg.ServiceName,
		Log:      log,
	}
	processor := &payments.Processor{
		Orders:   orderRepo,
		Stock:    catalogRepo,
		Replay:   &redisx.Dedup{R: rdb},
		Notify:   dispatcher,
		Events:   prod,
		Cache:    statusCache,
		Producer: cfg.ServiceName,
		Log:      log,
		Metrics:  m,
	}

	// Router
	router := httpx.NewRouter(log)
	(&httpx.OrdersHandler{Service: creator, Statuses: orderRepo, Products: catalogRepo, Redis: rdb, Log: log}).Register(router)
	(&httpx.WebhookHandler{Processor: processor, Log: log}).Register(router)
	(&httpx.AdminHandler{Admin: admin, Log: log}).Register(router)
	router.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	dispatcher.Wait() // let in-flight notifications finish
	prod.Close()      // flush queued events, then close the writer
	prod.WaitClosed()
}
