package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/logging"
)

// retryAfterSeconds is advertised on transient store failures.
const retryAfterSeconds = "1"

// writeError maps a service error onto its HTTP status and JSON body.
// Errors without a domain code are logged and reported as internal.
func writeError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status := code.HTTPStatus()
	msg := constants.ErrInternal

	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	switch {
	case apperr.HasCode(err, apperr.CodeTransientStore):
		c.Header(constants.HeaderRetryAfter, retryAfterSeconds)
		logging.Warn("store unavailable", logging.Fields{
			constants.LogFieldUserID: currentUserID(c),
			constants.LogFieldReason: err.Error(),
		})
	case status == http.StatusInternalServerError:
		logging.Error("request failed", err, logging.Fields{constants.LogFieldUserID: currentUserID(c)})
	}
	c.JSON(status, gin.H{
		constants.JSONKeyError: msg,
		constants.JSONKeyCode:  code,
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		constants.JSONKeyError: msg,
		constants.JSONKeyCode:  apperr.CodeValidation,
	})
}
