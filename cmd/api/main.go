package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/markov84/MarkLight-Ltd/internal/auth"
	"github.com/markov84/MarkLight-Ltd/internal/catalog"
	"github.com/markov84/MarkLight-Ltd/internal/config"
	"github.com/markov84/MarkLight-Ltd/internal/httpx"
	"github.com/markov84/MarkLight-Ltd/internal/inventory"
	kafkax "github.com/markov84/MarkLight-Ltd/internal/kafka"
	"github.com/markov84/MarkLight-Ltd/internal/logging"
	"github.com/markov84/MarkLight-Ltd/internal/notify"
	"github.com/markov84/MarkLight-Ltd/internal/orders"
	"github.com/markov84/MarkLight-Ltd/internal/postgres"
	"github.com/markov84/MarkLight-Ltd/internal/redisx"
	"github.com/markov84/MarkLight-Ltd/internal/shipping"
	"github.com/markov84/MarkLight-Ltd/internal/shutdown"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(log, cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	mailer := &notify.SMTPMailer{
		Addr: cfg.SMTPAddr,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
	}

	users := &auth.Repo{DB: db, AdminEmail: cfg.AdminEmail, AdminUsername: cfg.AdminUsername}
	mw := &auth.Middleware{Secret: []byte(cfg.JWTSecret)}
	reset := &auth.PasswordReset{
		Users:       users,
		Redis:       rdb,
		Mail:        mailer,
		FrontendURL: cfg.FrontendURL,
		Log:         log,
	}

	invStore := &inventory.PGStore{DB: db}
	coordinator := inventory.NewCoordinator(invStore, log)

	orderRepo := &orders.Repo{DB: db}
	placement := &orders.Service{
		Reserver: coordinator,
		Store:    orderRepo,
		Rates:    shipping.DefaultRates(),
		Currency: cfg.Currency,
		Log:      log,
	}

	router := httpx.NewRouter(httpx.NewRateLimiter(cfg.RateRPS, cfg.RateBurst))
	(&httpx.AuthHandler{Users: users, Reset: reset, JWTSecret: []byte(cfg.JWTSecret)}).Register(router)
	(&httpx.CatalogHandler{Repo: &catalog.Repo{DB: db}}).Register(router)
	(&httpx.OrdersHandler{
		Service:  placement,
		Repo:     orderRepo,
		Producer: prod,
		Redis:    rdb,
		Auth:     mw,
		Name:     cfg.ServiceName,
		Log:      log,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
}
