package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/lightstrail/aurora-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxUploadBytes   = 5 << 20 // 5MB
	defaultPageSize  = 20
	maxPageSize      = 100
	anonymousUploads = "Anonymous"
)

// GalleryHandler handles aurora photo uploads and gallery browsing.
type GalleryHandler struct {
	photos     repositories.GalleryRepository
	uploadsDir string
	logger     *slog.Logger
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(photos repositories.GalleryRepository, uploadsDir string, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{photos: photos, uploadsDir: uploadsDir, logger: logger}
}

// RegisterGalleryRoutes registers the gallery routes.
func (h *GalleryHandler) RegisterGalleryRoutes(g *echo.Group) {
	g.POST("/photos", h.UploadPhoto)
	g.GET("/photos", h.ListPhotos)
	g.GET("/photos/search", h.SearchPhotos)
	g.GET("/photos/:photoId", h.GetPhoto)
	g.PUT("/photos/:photoId", h.UpdatePhoto)
	g.DELETE("/photos/:photoId", h.DeletePhoto)
}

// UploadPhoto stores a multipart image (field "photo") on disk and its
// metadata in MongoDB. Only image content types are accepted, capped at 5MB.
func (h *GalleryHandler) UploadPhoto(c echo.Context) error {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "No photo file provided")
	}

	if fileHeader.Size > maxUploadBytes {
		return respondError(c, http.StatusBadRequest, "Photo exceeds the 5MB size limit")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return respondError(c, http.StatusBadRequest, "Only image uploads are allowed")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer src.Close()

	fileName := fmt.Sprintf("%s-%s%s",
		time.Now().UTC().Format("20060102T150405"),
		primitive.NewObjectID().Hex(),
		filepath.Ext(fileHeader.Filename))

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to store photo")
	}
	dstPath := filepath.Join(h.uploadsDir, fileName)
	dst, err := os.Create(dstPath)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to store photo")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, maxUploadBytes)); err != nil {
		os.Remove(dstPath)
		return respondError(c, http.StatusInternalServerError, "Failed to store photo")
	}

	userName := c.FormValue("userName")
	if userName == "" {
		userName = anonymousUploads
	}

	photo := &models.GalleryPhoto{
		FileName:   fileName,
		URL:        "/uploads/" + fileName,
		UserName:   userName,
		Location:   c.FormValue("location"),
		Visibility: c.FormValue("visibility"),
	}

	if err := h.photos.CreatePhoto(c.Request().Context(), photo); err != nil {
		os.Remove(dstPath)
		h.logger.Error("photo metadata insert failed", "error", err)
		return respondError(c, http.StatusInternalServerError, "Failed to save photo")
	}

	return respondOK(c, http.StatusCreated, "Photo uploaded successfully", photo)
}

// ListPhotos returns photos newest first with page/limit paging.
func (h *GalleryHandler) ListPhotos(c echo.Context) error {
	skip, limit := paging(c)

	photos, err := h.photos.GetPhotos(c.Request().Context(), skip, limit)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to load photos")
	}

	return respondOK(c, http.StatusOK, "", listItems(photos))
}

// SearchPhotos filters photos by a case-insensitive location prefix.
func (h *GalleryHandler) SearchPhotos(c echo.Context) error {
	skip, limit := paging(c)

	photos, err := h.photos.SearchByLocation(c.Request().Context(), c.QueryParam("location"), skip, limit)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to search photos")
	}

	return respondOK(c, http.StatusOK, "", listItems(photos))
}

// GetPhoto returns one photo by id.
func (h *GalleryHandler) GetPhoto(c echo.Context) error {
	photo, err := h.photos.GetPhotoByID(c.Request().Context(), c.Param("photoId"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "Photo not found")
		}
		return respondError(c, http.StatusBadRequest, "Invalid photo ID")
	}

	return respondOK(c, http.StatusOK, "", photo)
}

// UpdatePhoto updates mutable photo metadata.
func (h *GalleryHandler) UpdatePhoto(c echo.Context) error {
	var req models.UpdatePhotoRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidationError(c, http.StatusBadRequest, "Validation failed", err.Error())
	}

	photo, err := h.photos.UpdatePhoto(c.Request().Context(), c.Param("photoId"), req)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "Photo not found")
		}
		return respondError(c, http.StatusBadRequest, "Invalid photo ID")
	}

	return respondOK(c, http.StatusOK, "Photo updated", photo)
}

// DeletePhoto removes a photo and its file. The caller must present the
// same userName the photo was uploaded with.
func (h *GalleryHandler) DeletePhoto(c echo.Context) error {
	ctx := c.Request().Context()

	photo, err := h.photos.GetPhotoByID(ctx, c.Param("photoId"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "Photo not found")
		}
		return respondError(c, http.StatusBadRequest, "Invalid photo ID")
	}

	var body struct {
		UserName string `json:"userName"`
	}
	_ = c.Bind(&body)
	if body.UserName == "" || body.UserName != photo.UserName {
		return respondError(c, http.StatusForbidden, "You can only delete your own photos")
	}

	if err := h.photos.DeletePhoto(ctx, c.Param("photoId")); err != nil {
		return respondError(c, http.StatusInternalServerError, "Failed to delete photo")
	}

	if err := os.Remove(filepath.Join(h.uploadsDir, photo.FileName)); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("photo file removal failed", "fileName", photo.FileName, "error", err)
	}

	return respondOK(c, http.StatusOK, "Photo deleted successfully", nil)
}

func paging(c echo.Context) (skip, limit int64) {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return (page - 1) * limit, limit
}

func listItems(photos []models.GalleryPhoto) []models.PhotoListItem {
	items := make([]models.PhotoListItem, 0, len(photos))
	for _, p := range photos {
		items = append(items, models.PhotoListItem{
			ID:        p.ID.Hex(),
			URL:       p.URL,
			UserName:  p.UserName,
			Location:  p.Location,
			CreatedAt: p.CreatedAt,
		})
	}
	return items
}
