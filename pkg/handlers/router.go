package handlers

import (
	"github.com/arnavshah/trip-roster-api/pkg/logging"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route onto a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(logging.Middleware(h.logger()), gin.Recovery())

	r.GET("/", h.Index)
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	r.POST("/api/login", h.Login)

	api := r.Group("/api/airtable")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/trips", h.ListTrips)
		api.GET("/trips/:id", h.GetTrip)
		api.GET("/trips/:id/events", h.ListEvents)
		api.GET("/signups/:tripId", h.ListSignups)

		api.POST("/randomize", h.Randomize)
		api.POST("/approve-randomization", h.ApproveRandomization)
		api.POST("/addFromWaitlist", h.AddFromWaitlist)
		api.POST("/addDriver", h.AddDriver)
		api.POST("/addNonDriver", h.AddNonDriver)
		api.POST("/reAddParticipant", h.ReAddParticipant)
		api.POST("/dropParticipant", h.DropParticipant)
	}

	return r
}
