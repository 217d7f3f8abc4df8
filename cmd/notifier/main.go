package main

import (
	"context"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/markov84/MarkLight-Ltd/internal/config"
	kafkax "github.com/markov84/MarkLight-Ltd/internal/kafka"
	"github.com/markov84/MarkLight-Ltd/internal/logging"
	"github.com/markov84/MarkLight-Ltd/internal/notify"
	"github.com/markov84/MarkLight-Ltd/internal/orders"
	"github.com/markov84/MarkLight-Ltd/internal/redisx"
	"github.com/markov84/MarkLight-Ltd/internal/shutdown"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName + "-notifier")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis: rdb,
		Mail: &notify.SMTPMailer{
			Addr: cfg.SMTPAddr,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		},
		ServiceName: cfg.ServiceName + "-notifier",
		Log:         log,
	}

	group := getenv("NOTIFIER_GROUP", "order-notifier")
	workers := atoiOr(os.Getenv("NOTIFIER_WORKERS"), 4)
	cons := kafkax.NewConsumer(log, cfg.KafkaBrokers, group, orders.TopicOrderPlaced, workers)

	log.Info("notifier consumer started", "group", group, "topic", orders.TopicOrderPlaced, "workers", workers)
	if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
		log.Error("consumer exit", "err", err)
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 {
		return def
	}
	return i
}
