package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
)

// NewRouter mounts the public and authenticated routes under /api.
func NewRouter(h *BattleHandler, secret []byte) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteHealth, Health)
		apiRoutes.GET(constants.RouteVersion, Version)

		protected := apiRoutes.Group("")
		protected.Use(AuthRequired(secret))

		protected.POST(constants.RoutePvPQueue, h.JoinQueue)
		protected.GET(constants.RoutePvPQueue, h.PollQueue)
		protected.DELETE(constants.RoutePvPQueue, h.LeaveQueue)

		protected.GET(constants.RouteBattleByID, h.GetBattle)
		protected.POST(constants.RouteBattleReady, h.Ready)
		protected.POST(constants.RouteBattleAct, h.SubmitAction)
	}
	return router
}
