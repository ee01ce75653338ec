package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherai-insight/internal/app"
	"gopherai-insight/internal/transport/http/response"
)

type DatasetHandler struct {
	datasetService *app.DatasetService
	maxUploadBytes int64
}

func NewDatasetHandler(datasetService *app.DatasetService, maxUploadBytes int64) *DatasetHandler {
	return &DatasetHandler{datasetService: datasetService, maxUploadBytes: maxUploadBytes}
}

func (h *DatasetHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	datasets, err := h.datasetService.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "list datasets failed")
		return
	}
	response.OK(c, datasets)
}

// Create accepts a multipart form with "name", optional "description" and
// an optional "file".
func (h *DatasetHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := h.readUpload(c)
	if err != nil {
		writeError(c, err, "read upload failed")
		return
	}

	dataset, err := h.datasetService.Create(c.Request.Context(), app.CreateDatasetInput{
		UserID:      userID,
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		File:        file,
	})
	if err != nil {
		writeError(c, err, "create dataset failed")
		return
	}
	response.OK(c, dataset)
}

func (h *DatasetHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	dataset, err := h.datasetService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err, "get dataset failed")
		return
	}
	response.OK(c, dataset)
}

func (h *DatasetHandler) Update(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := h.readUpload(c)
	if err != nil {
		writeError(c, err, "read upload failed")
		return
	}

	dataset, err := h.datasetService.Update(c.Request.Context(), app.UpdateDatasetInput{
		UserID:      userID,
		DatasetID:   c.Param("id"),
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		File:        file,
	})
	if err != nil {
		writeError(c, err, "update dataset failed")
		return
	}
	response.OK(c, dataset)
}

func (h *DatasetHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	id := c.Param("id")
	if err := h.datasetService.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, err, "delete dataset failed")
		return
	}
	response.OK(c, gin.H{"deleted_dataset_id": id})
}

func (h *DatasetHandler) Chart(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	result, err := h.datasetService.Chart(c.Request.Context(), userID, c.Param("id"), app.ChartRequest{
		Type: c.Query("type"),
		XKey: c.Query("x"),
		YKey: c.Query("y"),
	})
	if err != nil {
		writeError(c, err, "build chart failed")
		return
	}
	response.OK(c, result)
}

// readUpload returns nil when the form carries no file.
func (h *DatasetHandler) readUpload(c *gin.Context) (*app.UploadFile, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, app.ErrInvalidInput
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return nil, app.ErrFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &app.UploadFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
