package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/server/middleware"
	"study-assistant/internal/shared/server/respond"
)

type Handler struct {
	Svc      *Service
	Sessions Sessions
}

func NewHandler(svc *Service, sessions Sessions) *Handler {
	return &Handler{Svc: svc, Sessions: sessions}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/logout", h.logout)
	rg.GET("/me", h.me)
}

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.FromError(c, apperr.Validation("Name, email, and password are required"))
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.FromError(c, apperr.Validation("Email and password are required"))
		return
	}
	user, err := h.Svc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

func (h *Handler) startSession(c *gin.Context, status int, user User) {
	token, err := h.Sessions.Start(c, user)
	if err != nil {
		respond.FromError(c, apperr.Internal("Failed to issue token", err))
		return
	}
	respond.JSON(c, status, gin.H{"success": true, "user": user, "token": token})
}

func (h *Handler) logout(c *gin.Context) {
	h.Sessions.End(c)
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (h *Handler) me(c *gin.Context) {
	id, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "user": user})
}
