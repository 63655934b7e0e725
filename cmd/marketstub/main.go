// Command marketstub runs the in-memory marketplace API stub for local
// development. State lives for the lifetime of the process only.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/pkg/config"
	"github.com/tradebridge/rfq-marketplace/internal/stub"
	"github.com/tradebridge/rfq-marketplace/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadStub(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("configuration error")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	opts := stub.Options{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Metrics:   true,
	}
	server := stub.NewServer(opts, log)
	seedAccounts(server, log)

	e := server.Router(opts)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting marketstub")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down marketstub")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// seedAccounts registers two well-known identities so a fresh stub is usable
// immediately: one buyer, one seller. Passwords satisfy the client-side
// policy so the CLI's validation gate lets them through.
func seedAccounts(server *stub.Server, log zerolog.Logger) {
	seeds := []struct {
		email, password, first, last, phone string
		role                                domain.Role
	}{
		{"buyer@tradebridge.example", "BuyerPass123!", "Bethel", "Alemu", "0911223344", domain.RoleBuyer},
		{"seller@tradebridge.example", "SellerPass123!", "Samuel", "Tesfaye", "0711223344", domain.RoleSeller},
	}
	for _, s := range seeds {
		id, err := server.Seed(s.email, s.password, s.first, s.last, s.phone, s.role)
		if err != nil {
			log.Warn().Err(err).Str("email", s.email).Msg("seed account failed")
			continue
		}
		log.Info().Str("email", s.email).Str("user_id", id).Str("role", string(s.role)).Msg("seeded account")
	}
}
