package handlers

import (
	"io"
	"net/http"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/cloudpitch/davbridge/internal/models"
	"github.com/cloudpitch/davbridge/internal/services"
	"github.com/cloudpitch/davbridge/internal/utils"
)

// FilesHandler serves the file management API on top of a storage backend.
type FilesHandler struct {
	store         services.Store
	maxUploadSize int64
}

func NewFilesHandler(store services.Store, maxUploadSize int64) *FilesHandler {
	return &FilesHandler{store: store, maxUploadSize: maxUploadSize}
}

// Upload stores a multipart file under the requested folder and returns
// the public URL of the stored file.
func (h *FilesHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
	}

	folder := c.FormValue("folder")
	if folder == "" {
		folder = "/"
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	contentType := file.Header.Get("Content-Type")
	if mtype, err := mimetype.DetectReader(src); err == nil {
		contentType = mtype.String()
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}

	remotePath := path.Join("/", folder, path.Base(file.Filename))
	if err := h.store.Upload(c.Request().Context(), remotePath, src, file.Size, contentType); err != nil {
		return storeError(err)
	}

	return c.JSON(http.StatusOK, models.UploadResponse{
		Status:  "success",
		FileURL: h.store.PublicURL(remotePath),
	})
}

// CreateDirectory creates a directory on the storage backend.
func (h *FilesHandler) CreateDirectory(c echo.Context) error {
	var req models.DirectoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	if err := h.store.CreateDirectory(c.Request().Context(), req.Path); err != nil {
		return storeError(err)
	}

	return c.JSON(http.StatusCreated, models.DirectoryResponse{
		Status: "success",
		Path:   req.Path,
	})
}

// ListDirectory returns the entries directly under the requested path.
func (h *FilesHandler) ListDirectory(c echo.Context) error {
	dirPath := c.QueryParam("path")
	if dirPath == "" {
		dirPath = "/"
	}

	entries, err := h.store.ListDirectory(c.Request().Context(), dirPath)
	if err != nil {
		return storeError(err)
	}

	resp := models.ListResponse{
		Path:    dirPath,
		Entries: make([]models.EntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, models.EntryResponse{
			Name:          e.Name,
			Path:          e.Path,
			IsDir:         e.IsDir,
			Size:          e.Size,
			FormattedSize: utils.FormatBytes(e.Size),
			ModTime:       e.ModTime,
			ETag:          e.ETag,
			ContentType:   e.ContentType,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// Delete removes the file or directory at the requested path.
func (h *FilesHandler) Delete(c echo.Context) error {
	remotePath := c.QueryParam("path")
	if remotePath == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	deleted, err := h.store.Delete(c.Request().Context(), remotePath)
	if err != nil {
		return storeError(err)
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, models.DeleteResponse{Status: "not_found"})
	}

	return c.JSON(http.StatusOK, models.DeleteResponse{Status: "success"})
}
