package chats

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/server/middleware"
	"study-assistant/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.send)
	rg.GET("/chats", h.list)
	rg.GET("/chats/:id", h.get)
}

type historyItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sendBody struct {
	Message string        `json:"message"`
	ChatID  string        `json:"chatId"`
	History []historyItem `json:"history"`
}

type sendResponse struct {
	Success  bool          `json:"success"`
	ChatID   string        `json:"chatId"`
	Response string        `json:"response"`
	History  []historyItem `json:"history"`
}

func (h *Handler) send(c *gin.Context) {
	id, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}
	var body sendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.FromError(c, apperr.Validation("Message is required"))
		return
	}
	if body.ChatID != "" {
		c.Set(middleware.ChatIDKey, body.ChatID)
	}

	req := SendRequest{Message: body.Message, ChatID: body.ChatID}
	for _, item := range body.History {
		req.History = append(req.History, Message{Role: item.Role, Content: item.Content})
	}

	res, err := h.Svc.Send(c.Request.Context(), id, req)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set(middleware.ChatIDKey, res.ChatID)

	out := sendResponse{Success: true, ChatID: res.ChatID, Response: res.Response, History: make([]historyItem, 0, len(res.History))}
	for _, msg := range res.History {
		out.History = append(out.History, historyItem{Role: msg.Role, Content: msg.Content})
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}
	chatID := c.Param("id")
	c.Set(middleware.ChatIDKey, chatID)

	chat, err := h.Svc.Get(c.Request.Context(), id, chatID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "chat": chat})
}

func (h *Handler) list(c *gin.Context) {
	id, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	chats, err := h.Svc.List(c.Request.Context(), id, limit)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "chats": chats})
}
