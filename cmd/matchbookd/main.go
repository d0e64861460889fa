package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchbook/internal/config"
	"matchbook/internal/engine"
	"matchbook/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	bus, err := transport.NewRedisBus(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Str("redis_url", cfg.RedisURL).Msg("invalid redis url")
	}
	if err := bus.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("redis_url", cfg.RedisURL).Msg("could not connect to redis")
	}
	defer bus.Close()

	dispatcher := engine.New(cfg.Depth)
	sub := transport.NewSubscriber(bus, dispatcher)

	t, tombCtx := tomb.WithContext(ctx)
	t.Go(func() error {
		return sub.Run(t, tombCtx)
	})

	log.Info().Str("redis_url", cfg.RedisURL).Msg("matchbookd started")

	<-ctx.Done()
	t.Kill(nil)
	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("subscriber exited with error")
	}
}
