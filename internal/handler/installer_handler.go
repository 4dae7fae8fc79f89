package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"solar-app/internal/services"
)

// InstallerHandler serves the installer dashboard's non-realtime reads: the
// invite code card, the client list, and the stat counters.
type InstallerHandler struct {
	auth    *services.AuthService
	invites *services.InviteService
	tickets *services.TicketService
	guides  *services.GuideService
	users   services.UserRepository
}

func NewInstallerHandler(auth *services.AuthService, invites *services.InviteService, tickets *services.TicketService, guides *services.GuideService, users services.UserRepository) *InstallerHandler {
	return &InstallerHandler{auth: auth, invites: invites, tickets: tickets, guides: guides, users: users}
}

// GetInviteCode returns the installer's code, creating it on first request.
func (h *InstallerHandler) GetInviteCode(c *gin.Context) {
	invite, err := h.invites.EnsureCode(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch invite code"})
		return
	}
	c.JSON(http.StatusOK, invite)
}

// VerifyInviteCode is the public lookup used during client signup.
func (h *InstallerHandler) VerifyInviteCode(c *gin.Context) {
	installer, err := h.invites.Verify(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid invite code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"installer_id": installer.ID.Hex(),
		"company_name": installer.CompanyName,
		"phone":        installer.Phone,
		"location":     installer.Location,
	})
}

func (h *InstallerHandler) GetClients(c *gin.Context) {
	clients, err := h.auth.Clients(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch clients"})
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetStats recomputes the dashboard counters from the store.
func (h *InstallerHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	installerID := c.GetString("user_id")

	totalClients, err := h.users.CountClientsOfInstaller(ctx, installerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}
	pendingTickets, err := h.tickets.PendingCount(ctx, installerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}
	totalGuides, err := h.guides.Count(ctx, installerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_clients":   totalClients,
		"pending_tickets": pendingTickets,
		"total_guides":    totalGuides,
	})
}
