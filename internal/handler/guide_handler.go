package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"solar-app/internal/models"
	"solar-app/internal/services"
)

type GuideHandler struct {
	guides *services.GuideService
	auth   *services.AuthService
}

func NewGuideHandler(guides *services.GuideService, auth *services.AuthService) *GuideHandler {
	return &GuideHandler{guides: guides, auth: auth}
}

func (h *GuideHandler) Create(c *gin.Context) {
	var req struct {
		Title    string `json:"title"`
		Category string `json:"category"`
		Content  string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	guide := &models.Guide{
		Title:       req.Title,
		Category:    req.Category,
		Content:     req.Content,
		InstallerID: c.GetString("user_id"),
	}
	if err := h.guides.Create(c.Request.Context(), guide); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create guide"})
		return
	}
	c.JSON(http.StatusOK, guide)
}

// List scopes by role: an installer sees their own guides, a client sees
// only the guides of the installer they are attached to.
func (h *GuideHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	installerID := c.GetString("user_id")

	if c.GetString("role") == models.RoleClient {
		profile, err := h.auth.Profile(ctx, c.GetString("user_id"))
		if err != nil || profile.User.InstallerID == "" {
			c.JSON(http.StatusOK, []models.Guide{})
			return
		}
		installerID = profile.User.InstallerID
	}

	guides, err := h.guides.ForInstaller(ctx, installerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch guides"})
		return
	}
	c.JSON(http.StatusOK, guides)
}
