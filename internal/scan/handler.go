package scan

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/documents"
	"study-assistant/internal/ingest"
	"study-assistant/internal/shared/server/middleware"
	"study-assistant/internal/shared/server/respond"
)

// Handler serves the summary endpoint.
type Handler struct {
	Svc   *Service
	Guard ingest.Guard
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{Svc: svc, Guard: ingest.Guard{MaxBytes: maxBytes, Table: ingest.DefaultTable}}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scan", h.scan)
}

type scanResponse struct {
	Success  bool   `json:"success"`
	Result   string `json:"result"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

func (h *Handler) scan(c *gin.Context) {
	id, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}
	req, err := documents.ReadUploadRequest(c, h.Guard)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	res, err := h.Svc.Summarize(c.Request.Context(), id, h.Guard, req)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, scanResponse{
		Success:  true,
		Result:   res.Summary,
		FileName: res.FileName,
		FileType: res.CanonicalType.String(),
		FileSize: res.SizeBytes,
	})
}
