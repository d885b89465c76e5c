package handlers

import (
	"context"
	"net/http"

	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/arnavshah/trip-roster-api/pkg/service"
	"github.com/gin-gonic/gin"
)

// ListTrips returns every trip
func (h *Handler) ListTrips(c *gin.Context) {
	trips, err := h.Service.Trips(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to fetch trips", err)
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	c.JSON(http.StatusOK, models.TripsResponse{Trips: trips})
}

// GetTrip returns a single trip
func (h *Handler) GetTrip(c *gin.Context) {
	trip, err := h.Service.Trip(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to fetch trip", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// ListSignups returns a trip's signups split by roster category
func (h *Handler) ListSignups(c *gin.Context) {
	resp, err := h.Service.Signups(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		h.respondError(c, "Failed to fetch signups", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListEvents returns the latest status changes for a trip
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.Service.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to fetch events", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Randomize stages a randomized roster for approval
func (h *Handler) Randomize(c *gin.Context) {
	var req models.TripRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Service.Randomize(c.Request.Context(), req.TripID)
	if err != nil {
		h.respondError(c, "Failed to randomize roster", err)
		return
	}

	c.JSON(http.StatusOK, models.RandomizeResponse{
		Success:          true,
		Message:          res.Message,
		ProposedRoster:   res.Allocation.Roster,
		ProposedWaitlist: res.Allocation.Waitlist,
	})
}

// ApproveRandomization commits the staged roster when the submitted ids
// match it exactly
func (h *Handler) ApproveRandomization(c *gin.Context) {
	var req models.ApproveRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.Service.Approve(c.Request.Context(), req.TripID, req.RosterIDs, req.WaitlistIDs)
	if err != nil {
		h.respondError(c, "Failed to approve randomization", err)
		return
	}
	c.JSON(http.StatusOK, models.ActionResponse{Success: true, Message: msg})
}

// AddFromWaitlist promotes the next waitlisted participant
func (h *Handler) AddFromWaitlist(c *gin.Context) {
	h.promote(c, "Failed to add from waitlist", h.Service.AddFromWaitlist)
}

// AddDriver promotes the next waitlisted driver
func (h *Handler) AddDriver(c *gin.Context) {
	h.promote(c, "Failed to add driver", h.Service.AddDriver)
}

// AddNonDriver promotes the next waitlisted non-driver
func (h *Handler) AddNonDriver(c *gin.Context) {
	h.promote(c, "Failed to add non-driver", h.Service.AddNonDriver)
}

type promoteFunc func(ctx context.Context, tripID string) (service.PromotionResult, error)

func (h *Handler) promote(c *gin.Context, fallback string, fn promoteFunc) {
	var req models.TripRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := fn(c.Request.Context(), req.TripID)
	if err != nil {
		h.respondError(c, fallback, err)
		return
	}
	c.JSON(http.StatusOK, addResponse(res))
}

// ReAddParticipant puts a dropped or waitlisted participant back on the roster
func (h *Handler) ReAddParticipant(c *gin.Context) {
	var req models.ParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Service.ReAdd(c.Request.Context(), req.TripID, req.ParticipantID, req.ParticipantName)
	if err != nil {
		h.respondError(c, "Failed to re-add participant", err)
		return
	}
	c.JSON(http.StatusOK, addResponse(res))
}

// DropParticipant marks a participant as dropped today
func (h *Handler) DropParticipant(c *gin.Context) {
	var req models.ParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.Service.Drop(c.Request.Context(), req.TripID, req.ParticipantID, req.ParticipantName)
	if err != nil {
		h.respondError(c, "Failed to drop participant", err)
		return
	}
	c.JSON(http.StatusOK, models.ActionResponse{Success: true, Message: msg})
}

func addResponse(res service.PromotionResult) models.AddResponse {
	p := res.Participant
	return models.AddResponse{Success: true, Message: res.Message, AddedParticipant: &p}
}
