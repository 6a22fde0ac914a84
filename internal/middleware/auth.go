package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/pkg/auth"
)

const (
	ContextUserID    = "user_id"
	ContextSuperuser = "is_superuser"
	ContextEmail     = "user_email"

	claimsCacheTTL = time.Minute
)

type tokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AuthMiddleware resolves bearer tokens into a requester identity. Validated
// claims are cached briefly so hot clients don't pay the signature check on
// every request.
type AuthMiddleware struct {
	jwtSvc tokenValidator
	claims *gocache.Cache
}

func NewAuthMiddleware(jwtSvc tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc: jwtSvc,
		claims: gocache.New(claimsCacheTTL, 5*time.Minute),
	}
}

// Authenticate verifies the Authorization header and stores the requester
// identity in the gin context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Not authenticated")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "Not authenticated")
			return
		}

		claims, err := m.validate(parts[1])
		if err != nil {
			abortUnauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextSuperuser, claims.Superuser)
		c.Next()
	}
}

// RequireSuperuser gates routes behind the superuser flag set by Authenticate.
func (m *AuthMiddleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextSuperuser) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"detail": "The user doesn't have enough privileges",
			})
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) validate(token string) (*auth.Claims, error) {
	if cached, ok := m.claims.Get(token); ok {
		return cached.(*auth.Claims), nil
	}
	claims, err := m.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	m.claims.SetDefault(token, claims)
	return claims, nil
}

// RequesterFromContext rebuilds the requester identity stored by Authenticate.
func RequesterFromContext(c *gin.Context) (model.Requester, bool) {
	userID, err := uuid.Parse(c.GetString(ContextUserID))
	if err != nil {
		return model.Requester{}, false
	}
	return model.Requester{
		UserID:    userID,
		Superuser: c.GetBool(ContextSuperuser),
	}, true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msg})
}
