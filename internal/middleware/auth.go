package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/pkg/auth"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/httputil"
)

const ContextUser = "current_user"

type AuthMiddleware struct {
	jwt   auth.JWTService
	users repository.UserRepository
	cache *gocache.Cache
}

func NewAuthMiddleware(jwtSvc auth.JWTService, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:   jwtSvc,
		users: users,
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

// Authenticate validates the bearer token and loads the account behind
// it. The lookup is cached briefly, so a deactivation takes up to the
// cache TTL to lock the account out of in-flight tokens.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondWithError(c, errors.Unauthenticated("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, errors.Unauthenticated("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.jwt.ValidateAccessToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, errors.Unauthenticated("invalid or expired token"))
			c.Abort()
			return
		}

		u, err := m.resolveUser(c, claims)
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUser, u)
		c.Next()
	}
}

func (m *AuthMiddleware) resolveUser(c *gin.Context, claims *auth.Claims) (*model.User, error) {
	key := claims.UserID.String()
	if cached, ok := m.cache.Get(key); ok {
		return cached.(*model.User), nil
	}

	u, err := m.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if u == nil || !u.IsActive {
		return nil, errors.Unauthenticated("account is no longer active")
	}

	m.cache.SetDefault(key, u)
	return u, nil
}

// RequireRoles allows the request through only for the listed roles.
func (m *AuthMiddleware) RequireRoles(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			httputil.RespondWithError(c, errors.Unauthenticated("authentication required"))
			c.Abort()
			return
		}
		for _, role := range roles {
			if u.Role == role {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, errors.Forbidden("insufficient role"))
		c.Abort()
	}
}

// CurrentUser returns the authenticated account, or nil outside the
// Authenticate middleware.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
