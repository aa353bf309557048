package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const actorContextKey = "actorID"

// ActorID resolves the caller's identity from the X-User-ID header and
// stores it on the request context. The header is optional: the appeal
// wizard runs before sign-in, so anonymous requests pass through with no
// actor set. A present-but-malformed header is rejected outright.
func ActorID() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-ID")
		if header == "" {
			c.Next()
			return
		}

		id, err := uuid.Parse(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_USER_ID",
					"message": "Invalid X-User-ID header format",
				},
			})
			return
		}

		c.Set(actorContextKey, id)
		c.Next()
	}
}

// actorFrom returns the authenticated actor, or nil for anonymous requests.
func actorFrom(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// requireActor returns the authenticated actor or writes a 401 and reports
// false. Used by endpoints that have no anonymous mode.
func requireActor(c *gin.Context) (uuid.UUID, bool) {
	actor := actorFrom(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "X-User-ID header is required",
			},
		})
		return uuid.Nil, false
	}
	return *actor, true
}
