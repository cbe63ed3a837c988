package documents

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/ingest"
	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/server/middleware"
	"study-assistant/internal/shared/server/respond"
)

// formOverhead leaves room for the non-file multipart fields.
const formOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc         *Service
	UploadGuard ingest.Guard
	ImageGuard  ingest.Guard
}

// NewHandler constructs a Handler with independent upload and image admission profiles.
func NewHandler(svc *Service, uploadMaxBytes, imageMaxBytes int64) *Handler {
	return &Handler{
		Svc:         svc,
		UploadGuard: ingest.Guard{MaxBytes: uploadMaxBytes, Table: svc.table()},
		ImageGuard:  ingest.Guard{MaxBytes: imageMaxBytes, ImagesOnly: true, Table: svc.table()},
	}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload(h.UploadGuard))
	rg.POST("/upload/image", h.upload(h.ImageGuard))
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/file", h.file)
}

func (h *Handler) upload(guard ingest.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.RequireIdentity(c)
		if !ok {
			return
		}

		req, err := ReadUploadRequest(c, guard)
		if err != nil {
			respond.FromError(c, err)
			return
		}

		res, err := h.Svc.Upload(c.Request.Context(), id, guard, req)
		if err != nil {
			respond.FromError(c, err)
			return
		}
		c.Set(middleware.DocumentIDKey, res.Document.ID)
		respond.Created(c, toUploadResponse(res))
	}
}

// ReadUploadRequest parses the multipart form into an UploadRequest. The body
// is capped slightly above the guard ceiling so oversized files fail fast.
func ReadUploadRequest(c *gin.Context, guard ingest.Guard) (ingest.UploadRequest, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, guard.MaxBytes+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return ingest.UploadRequest{}, guard.SizeError()
		}
		return ingest.UploadRequest{}, &apperr.Error{Kind: apperr.KindValidation, Message: "File is required", Cause: ingest.ErrFileRequired}
	}
	if fileHeader.Size > guard.MaxBytes {
		return ingest.UploadRequest{}, guard.SizeError()
	}

	f, err := fileHeader.Open()
	if err != nil {
		return ingest.UploadRequest{}, apperr.Validation("Unable to read file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, guard.MaxBytes+1))
	if err != nil {
		return ingest.UploadRequest{}, apperr.Validation("Unable to read file")
	}

	return ingest.UploadRequest{
		Data:          data,
		DeclaredType:  fileHeader.Header.Get("Content-Type"),
		FileName:      fileHeader.Filename,
		Title:         ingest.TitleOrDefault(c.PostForm("title"), fileHeader.Filename),
		Tags:          ingest.ParseTags(c.PostForm("tags")),
		IsHandwritten: strings.EqualFold(strings.TrimSpace(c.PostForm("isHandwritten")), "true"),
	}, nil
}

func (h *Handler) get(c *gin.Context) {
	id, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}
	documentID := c.Param("id")
	c.Set(middleware.DocumentIDKey, documentID)

	doc, err := h.Svc.Get(c.Request.Context(), id, documentID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "document": doc})
}

func (h *Handler) file(c *gin.Context) {
	id, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}
	documentID := c.Param("id")
	c.Set(middleware.DocumentIDKey, documentID)

	doc, rc, err := h.Svc.OpenFile(c.Request.Context(), id, documentID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, doc.SizeBytes, doc.MimeType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}),
	})
}

func (h *Handler) list(c *gin.Context) {
	id, ok := middleware.RequireIdentity(c)
	if !ok {
		return
	}

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := h.Svc.List(c.Request.Context(), id, limit, offset)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	out := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toSummary(doc))
	}
	respond.OK(c, gin.H{"success": true, "documents": out})
}
