package stub

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	ID          string `json:"id"`
	LastRole    string `json:"lastRole"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type switchRoleRequest struct {
	Role string `json:"role"`
}

// login checks credentials and issues a token minted for the account's last
// active role.
func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	acc, err := s.store.authenticate(req.Email, req.Password)
	if err != nil {
		loginsTotal.WithLabelValues("failed").Inc()
		return err
	}

	token, err := s.issueToken(acc)
	if err != nil {
		return err
	}
	loginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		FirstName:   acc.FirstName,
		LastName:    acc.LastName,
		ID:          acc.ID,
		LastRole:    string(acc.LastRole),
	})
}

// logout is a no-op acknowledgement; the stub keeps no token state.
func (s *Server) logout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// refresh re-issues a token for the caller, picking up the account's current
// role so a persisted role switch lands in the next token.
func (s *Server) refresh(c echo.Context) error {
	acc, ok := s.store.accountByID(callerID(c))
	if !ok {
		return domain.ErrUserNotFound
	}
	token, err := s.issueToken(acc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refreshResponse{AccessToken: token})
}

// switchRole persists the account's new active role. The caller may only
// switch their own account.
func (s *Server) switchRole(c echo.Context) error {
	userID := c.Param("userId")
	if userID != callerID(c) {
		return domain.ErrForbidden
	}

	var req switchRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	role := domain.Role(req.Role)
	if !domain.ValidRole(role) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}
	if err := s.store.setRole(userID, role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) issueToken(acc *account) (string, error) {
	claims := jwt.MapClaims{
		"sub":  acc.ID,
		"name": strings.TrimSpace(acc.FirstName + " " + acc.LastName),
		"role": string(acc.LastRole),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

// requireAuth validates the bearer token and injects the caller's identity
// into the request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(s.secret), nil
		})
		if err != nil || !tkn.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		c.Set("user_id", sub)
		c.Set("role", role)

		return next(c)
	}
}

func callerID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

func callerRole(c echo.Context) domain.Role {
	role, _ := c.Get("role").(string)
	return domain.Role(role)
}
