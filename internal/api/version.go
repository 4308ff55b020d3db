package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/version"
)

// Version returns build and VCS metadata injected at build time.
func Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Current())
}

// Health reports liveness for container probes.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
}
