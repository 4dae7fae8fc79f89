package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"solar-app/internal/models"
	"solar-app/internal/services"
)

type TicketHandler struct {
	tickets *services.TicketService
	auth    *services.AuthService
}

func NewTicketHandler(tickets *services.TicketService, auth *services.AuthService) *TicketHandler {
	return &TicketHandler{tickets: tickets, auth: auth}
}

// Create opens a ticket for the logged-in client against their installer.
func (h *TicketHandler) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	profile, err := h.auth.Profile(c.Request.Context(), c.GetString("user_id"))
	if err != nil || profile.User.InstallerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no installer on record"})
		return
	}

	ticket := &models.Ticket{
		Title:       req.Title,
		Description: req.Description,
		ClientID:    profile.User.ID.Hex(),
		ClientName:  profile.User.FullName,
		InstallerID: profile.User.InstallerID,
	}
	if err := h.tickets.Create(c.Request.Context(), ticket); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create ticket"})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// List is role-scoped: installers see their whole book, clients only theirs.
func (h *TicketHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	var (
		tickets []models.Ticket
		err     error
	)
	if c.GetString("role") == models.RoleInstaller {
		tickets, err = h.tickets.ForInstaller(ctx, userID)
	} else {
		tickets, err = h.tickets.ForClient(ctx, userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch tickets"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) MarkInProgress(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	ticket, err := h.tickets.MarkInProgress(c.Request.Context(), id, c.GetString("user_id"))
	if err != nil {
		c.JSON(transitionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Respond(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	var req struct {
		Response string `json:"response"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	ticket, err := h.tickets.RespondAndResolve(c.Request.Context(), id, c.GetString("user_id"), req.Response)
	if err != nil {
		c.JSON(transitionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func transitionStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotTicketOwner):
		return http.StatusForbidden
	case errors.Is(err, models.ErrEmptyResponse):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTicketResolved),
		errors.Is(err, models.ErrTicketNotPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
