package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"techstore-admin/internal/models"
	"techstore-admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionContextKey = "session"

var errInvalidToken = fmt.Errorf("invalid token: %w", service.ErrNotAuthenticated)

// TokenIssuer signs and verifies the bearer tokens handed out at login. A
// token only carries the session id; the session itself lives in the store.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an HS256 issuer. A zero ttl issues tokens without
// expiry.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(sess *models.Session) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		ID:       sess.ID,
		Subject:  strconv.FormatInt(sess.User.ID, 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies token and returns the session id it carries.
func (t *TokenIssuer) Parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || claims.ID == "" {
		return "", errInvalidToken
	}
	return claims.ID, nil
}

// requireAuth resolves the bearer token to a stored session. Requests
// without one are refused with 401.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			h.abortError(c, service.ErrNotAuthenticated)
			return
		}

		id, err := h.tokens.Parse(raw)
		if err != nil {
			h.abortError(c, err)
			return
		}

		sess, err := h.svc.Auth.Session(c.Request.Context(), id)
		if err != nil {
			h.abortError(c, err)
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"details": fmt.Sprintf("role %s required", role),
			})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(*models.Session); ok {
			return sess
		}
	}
	return nil
}

// currentUser is the session user, or the zero user outside requireAuth.
func currentUser(c *gin.Context) models.User {
	if sess := currentSession(c); sess != nil {
		return sess.User
	}
	return models.User{}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	sess, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(sess)
	if err != nil {
		h.respondError(c, fmt.Errorf("sign token: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  sess.User.Public(),
	})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Auth.Logout(c.Request.Context(), currentSession(c).ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).Public())
}
