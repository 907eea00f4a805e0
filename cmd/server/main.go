package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kparks44/rumble-backend/internal/config"
	"github.com/kparks44/rumble-backend/internal/hub"
	"github.com/kparks44/rumble-backend/internal/httpapi"
	"github.com/kparks44/rumble-backend/internal/queue"
	"github.com/kparks44/rumble-backend/internal/room"
	"github.com/kparks44/rumble-backend/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := buildLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	selector := words.NewSelector(words.DefaultPool, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))

	h := hub.NewHub(ctx, hub.Options{
		Selector: selector,
		Rules:    cfg.Rules,
		Clock:    clockwork.NewRealClock(),
		Rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Log:      log,
	})

	q := queue.New(func(a, b queue.Entry) (string, error) {
		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.CreateRoom{A: a, B: b, Reply: reply}
		rm := <-reply
		if rm == nil {
			return "", errors.New("failed to create session")
		}
		return rm.ID, nil
	}, log)

	handler := httpapi.SetupRoutes(h, q, cfg.AllowedOrigins, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
