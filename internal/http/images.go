package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"price-board/internal/storage"
)

// ImageResponse describes one stored image.
type ImageResponse struct {
	Name         string  `json:"name"`
	Size         int64   `json:"size"`
	ContentType  string  `json:"content_type,omitempty"`
	LastModified *string `json:"last_modified,omitempty"`
}

func imageToResponse(obj storage.ObjectInfo) ImageResponse {
	resp := ImageResponse{
		Name:        obj.Name,
		Size:        obj.Size,
		ContentType: obj.ContentType,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func (h *Handler) uploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Image is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image uploaded"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only image files are allowed"})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.writeError(c, err, "Failed to upload image")
		return
	}
	defer src.Close()

	info, err := h.images.Put(c.Request.Context(), storage.StoredName(file.Filename), src, storage.PutOptions{
		ContentType: contentType,
		Size:        file.Size,
	})
	if err != nil {
		h.writeError(c, err, "Failed to upload image")
		return
	}

	h.logger.WithField("image", info.Name).Info("image uploaded")
	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded successfully", "image": imageToResponse(info)})
}

func (h *Handler) listImages(c *gin.Context) {
	objects, err := h.images.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to list images")
		return
	}

	resp := make([]ImageResponse, len(objects))
	for i := range objects {
		resp[i] = imageToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getImage(c *gin.Context) {
	body, info, err := h.images.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeError(c, err, "Failed to read image")
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, body, nil)
}

func (h *Handler) deleteImage(c *gin.Context) {
	if err := h.images.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.writeError(c, err, "Failed to delete image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
