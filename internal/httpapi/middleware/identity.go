package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/httpapi/response"
	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderClientID = "X-Client-ID"

	identityKey = "coursegate.identity"
)

var errMissingIdentity = errors.New("missing learner identity")

// RequireIdentity reads the learner identity the session layer forwards in
// request headers. Requests without one are rejected with 401.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := app.Identity{
			UserID:   strings.TrimSpace(c.GetHeader(HeaderUserID)),
			ClientID: strings.TrimSpace(c.GetHeader(HeaderClientID)),
		}
		if id.UserID == "" || id.ClientID == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "unauthorized", errMissingIdentity)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity RequireIdentity attached, or the zero
// value when the route is not behind it.
func IdentityFrom(c *gin.Context) app.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return app.Identity{}
	}
	id, _ := v.(app.Identity)
	return id
}
