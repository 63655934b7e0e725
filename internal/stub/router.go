package stub

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
)

// Server is the in-memory marketplace stub.
type Server struct {
	store        *memoryStore
	secret       string
	tokenTTL     time.Duration
	checkoutBase string
	log          zerolog.Logger
}

// Options tune the stub server.
type Options struct {
	// JWTSecret signs issued tokens.
	JWTSecret string
	// TokenTTL bounds token lifetime; defaults to an hour.
	TokenTTL time.Duration
	// Metrics enables the echoprometheus middleware and /metrics endpoint.
	// Tests that build several routers keep it off to avoid duplicate
	// collector registration.
	Metrics bool
}

// NewServer builds a stub marketplace with an empty store.
func NewServer(opts Options, log zerolog.Logger) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	return &Server{
		store:        newMemoryStore(),
		secret:       opts.JWTSecret,
		tokenTTL:     opts.TokenTTL,
		checkoutBase: "https://pay.tradebridge.example/checkout",
		log:          log.With().Str("component", "marketstub").Logger(),
	}
}

// Seed registers an account directly, bypassing the HTTP surface. Used by
// the stub binary and by tests to set up known identities.
func (s *Server) Seed(email, password, firstName, lastName, phone string, role domain.Role) (string, error) {
	acc, err := s.store.addAccount(email, password, firstName, lastName, phone, role)
	if err != nil {
		return "", err
	}
	return acc.ID, nil
}

// Router builds the Echo instance with all marketplace routes registered.
func (s *Server) Router(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = newErrorHandler(s.log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if opts.Metrics {
		e.Use(echoprometheus.NewMiddleware(namespace))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/auth/login", s.login)

	auth := e.Group("", s.requireAuth)
	auth.POST("/auth/logout", s.logout)
	auth.POST("/auth/refresh", s.refresh)
	auth.PATCH("/user/switch-role/:userId", s.switchRole)

	auth.POST("/rfq/buyer/:buyerId/post-rfq", s.postRFQ)
	auth.PATCH("/rfq/:rfqId/edit-rfq", s.editRFQ)
	auth.GET("/rfq/:rfqId/view-rfq", s.viewRFQ)
	auth.GET("/rfq/view-all-rfqs", s.listOpenRFQs)
	auth.GET("/rfq/buyer/:buyerId/view-all-rfqs", s.listRFQsByBuyer)
	auth.DELETE("/rfq/:rfqId/delete-rfq", s.deleteRFQ)
	auth.GET("/rfq/:rfqId/file/:filename", s.downloadRFQFile)

	auth.POST("/bid/seller/:sellerId/create-bid", s.createBid)
	auth.PATCH("/bid/:bidId/edit-bid", s.editBid)
	auth.GET("/bid/:bidId/view-bid", s.viewBid)
	auth.GET("/bid/rfq/:rfqId/view-all-bids", s.listBidsByRFQ)
	auth.GET("/bid/seller/:sellerId/view-all-bids", s.listBidsBySeller)
	auth.DELETE("/bid/:bidId/delete-bid", s.deleteBid)
	auth.PATCH("/bid/:bidId/award-bid", s.awardBid)
	auth.GET("/bid/:bidId/file/:filename", s.downloadBidFile)

	auth.POST("/product/seller/:sellerId/create-product", s.createProduct)
	auth.GET("/product/seller/:sellerId/view-all-products", s.listProducts)
	auth.DELETE("/product/:productId/delete-product", s.deleteProduct)

	auth.POST("/transaction/bid/:bidId/create-transaction", s.createTransaction)
	auth.GET("/transaction/:txId/view-transaction", s.viewTransaction)
	auth.GET("/transaction/user/:userId/view-all-transactions", s.listTransactions)
	auth.POST("/transaction/:txId/pay", s.pay)

	auth.POST("/feedback/create-feedback", s.createFeedback)
	auth.GET("/feedback/seller/:sellerId/view-all-feedback", s.listFeedbackBySeller)

	return e
}

// errorResponse is the canonical error envelope of the stub API.
type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// newErrorHandler maps known domain errors to deterministic HTTP codes and
// renders the {"message": ...} envelope the client normalizes from.
func newErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrRFQNotFound),
		errors.Is(err, domain.ErrBidNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrAlreadyAwarded):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
