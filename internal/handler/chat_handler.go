package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"solar-app/internal/models"
	"solar-app/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	msg, err := h.chat.Send(c.Request.Context(), c.GetString("user_id"), c.GetString("role"), c.Param("peer"), req.Text)
	if errors.Is(err, models.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *ChatHandler) Messages(c *gin.Context) {
	messages, err := h.chat.Messages(c.Request.Context(), c.GetString("user_id"), c.Param("peer"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MarkRead is called when the chat panel opens on the viewer's side.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	if err := h.chat.MarkRead(c.Request.Context(), c.GetString("user_id"), c.Param("peer")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark messages read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Unread backs the closed-panel badge; it counts without mutating.
func (h *ChatHandler) Unread(c *gin.Context) {
	count, err := h.chat.UnreadCount(c.Request.Context(), c.GetString("user_id"), c.Param("peer"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count unread"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// Typing records a keystroke from the sender.
func (h *ChatHandler) Typing(c *gin.Context) {
	if err := h.chat.Typing(c.Request.Context(), c.GetString("user_id"), c.Param("peer")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record typing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PeerTyping reports whether the other side typed within the recency window.
func (h *ChatHandler) PeerTyping(c *gin.Context) {
	typing, err := h.chat.PeerTyping(c.Request.Context(), c.GetString("user_id"), c.Param("peer"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check typing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"typing": typing})
}
