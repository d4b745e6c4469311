package handler

import (
	"io"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AttachmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	attachments := router.Group("/attachments")
	{
		attachments.GET("", middleware.RequirePermission("interventions.read"), h.ListByEntity)
		attachments.GET("/:id/download", middleware.RequirePermission("interventions.read"), h.Download)
		attachments.POST("", middleware.RequirePermission("interventions.write"), h.Upload)
		attachments.DELETE("/:id", middleware.RequirePermission("interventions.write"), h.Deactivate)
	}
}

// Upload handles POST /attachments (multipart form)
// @Summary      Upload attachment
// @Description  Stores a file and links it to an entity (intervention, quote, invoice...)
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file         formData  file    true  "File to upload"
// @Param        entity_type  formData  string  true  "Owning entity type"
// @Param        entity_id    formData  string  true  "Owning entity ID"
// @Success      201  {object}  response.Response{data=service.AttachmentResponse}
// @Failure      400  {object}  response.Response
// @Router       /attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "file is required"))
		return
	}

	entityType := c.PostForm("entity_type")
	entityID := c.PostForm("entity_id")

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "failed to read uploaded file"))
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(
		c.Request.Context(),
		tenantID,
		userFromContext(c),
		entityType,
		entityID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, attachment))
}

// ListByEntity handles GET /attachments?entity_type=...&entity_id=...
// @Summary      List attachments for an entity
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        entity_type  query     string  true  "Owning entity type"
// @Param        entity_id    query     string  true  "Owning entity ID"
// @Success      200  {object}  response.Response{data=[]service.AttachmentResponse}
// @Failure      400  {object}  response.Response
// @Router       /attachments [get]
func (h *AttachmentHandler) ListByEntity(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")
	if entityType == "" || entityID == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "entity_type and entity_id are required"))
		return
	}

	attachments, err := h.attachmentService.ListByEntity(c.Request.Context(), tenantID, entityType, entityID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, attachments))
}

// Download handles GET /attachments/:id/download
// @Summary      Download attachment
// @Tags         attachments
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path      string  true  "Attachment ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /attachments/{id}/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	attachment, reader, err := h.attachmentService.Download(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", "attachment; filename=\""+attachment.FileName+"\"")
	contentType := attachment.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

// Deactivate handles DELETE /attachments/:id
// @Summary      Deactivate attachment
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Attachment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /attachments/{id} [delete]
func (h *AttachmentHandler) Deactivate(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	if err := h.attachmentService.Deactivate(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Attachment deactivated"))
}
