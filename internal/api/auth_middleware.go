package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
)

// sessionToken reads the bearer token, falling back to the session cookie.
func sessionToken(c *gin.Context) string {
	if h := c.GetHeader(constants.HeaderAuthorization); strings.HasPrefix(h, constants.BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, constants.BearerPrefix))
	}
	if tok, err := c.Cookie(constants.CookieSessionName); err == nil {
		return tok
	}
	return ""
}

// AuthRequired validates the session token and injects identity into context.
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			return
		}
		claims, err := parseSession(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrInvalidSession})
			return
		}
		c.Set(constants.ContextUserID, claims.Subject)
		c.Set(constants.ContextUserName, claims.Name)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(constants.ContextUserID)
}
