package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gopherai-insight/internal/model"
	"gopherai-insight/internal/pkg/chart"
	"gopherai-insight/internal/pkg/tabular"
)

type DatasetStore interface {
	Create(ctx context.Context, dataset *model.Dataset) error
	ListByUserID(ctx context.Context, userID uint) ([]model.Dataset, error)
	GetByIDAndUserID(ctx context.Context, id string, userID uint) (*model.Dataset, error)
	Save(ctx context.Context, dataset *model.Dataset) error
	DeleteByIDAndUserID(ctx context.Context, id string, userID uint) error
}

// BlobStore keeps the uploaded source file of a dataset.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

type DatasetService struct {
	datasets       DatasetStore
	blobs          BlobStore
	maxUploadBytes int64
	logger         *zap.Logger
	now            func() time.Time
}

// UploadFile is a dataset source file as received from the client.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateDatasetInput struct {
	UserID      uint
	Name        string
	Description string
	File        *UploadFile
}

type UpdateDatasetInput struct {
	UserID      uint
	DatasetID   string
	Name        string
	Description string
	File        *UploadFile
}

type ChartRequest struct {
	Type string
	XKey string
	YKey string
}

type ChartResult struct {
	Type   chart.Type    `json:"type"`
	XKey   string        `json:"x_key"`
	YKey   string        `json:"y_key"`
	Points []chart.Point `json:"points"`
}

func NewDatasetService(datasets DatasetStore, blobs BlobStore, maxUploadBytes int64, logger *zap.Logger) *DatasetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetService{
		datasets:       datasets,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		now:            time.Now,
	}
}

// Create parses the optional file before anything is stored, so a malformed
// upload leaves neither a record nor a blob behind.
func (s *DatasetService) Create(ctx context.Context, input CreateDatasetInput) (*model.Dataset, error) {
	name := strings.TrimSpace(input.Name)
	if input.UserID == 0 || name == "" {
		return nil, ErrInvalidInput
	}

	dataset := &model.Dataset{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Name:        name,
		Description: optionalString(input.Description),
		Columns:     []string{},
		SampleRows:  []*model.Row{},
	}

	if input.File != nil {
		preview, mediaType, err := s.inspect(input.File)
		if err != nil {
			return nil, err
		}
		path, err := s.upload(ctx, input.UserID, mediaType, input.File.Data)
		if err != nil {
			return nil, err
		}
		applyPreview(dataset, preview, path, int64(len(input.File.Data)))
	}

	if err := s.datasets.Create(ctx, dataset); err != nil {
		if dataset.FilePath != nil {
			s.removeBlob(ctx, *dataset.FilePath)
		}
		return nil, storeErr("create dataset", err)
	}
	return dataset, nil
}

// Update renames the dataset and, when a file is supplied, replaces its
// preview and source file. Without a file the preview is kept.
func (s *DatasetService) Update(ctx context.Context, input UpdateDatasetInput) (*model.Dataset, error) {
	name := strings.TrimSpace(input.Name)
	if input.UserID == 0 || input.DatasetID == "" || name == "" {
		return nil, ErrInvalidInput
	}

	dataset, err := s.get(ctx, input.UserID, input.DatasetID)
	if err != nil {
		return nil, err
	}

	var previousPath string
	if input.File != nil {
		preview, mediaType, err := s.inspect(input.File)
		if err != nil {
			return nil, err
		}
		path, err := s.upload(ctx, input.UserID, mediaType, input.File.Data)
		if err != nil {
			return nil, err
		}
		if dataset.FilePath != nil && *dataset.FilePath != path {
			previousPath = *dataset.FilePath
		}
		applyPreview(dataset, preview, path, int64(len(input.File.Data)))
	}
	dataset.Name = name
	dataset.Description = optionalString(input.Description)

	if err := s.datasets.Save(ctx, dataset); err != nil {
		if input.File != nil {
			s.removeBlob(ctx, *dataset.FilePath)
		}
		return nil, storeErr("update dataset", err)
	}
	if previousPath != "" {
		s.removeBlob(ctx, previousPath)
	}
	return dataset, nil
}

// Delete removes the record, then makes a best effort to remove its file.
func (s *DatasetService) Delete(ctx context.Context, userID uint, id string) error {
	if userID == 0 || id == "" {
		return ErrInvalidInput
	}
	dataset, err := s.get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.datasets.DeleteByIDAndUserID(ctx, id, userID); err != nil {
		return storeErr("delete dataset", err)
	}
	if dataset.FilePath != nil {
		s.removeBlob(ctx, *dataset.FilePath)
	}
	return nil
}

// List returns the user's datasets, newest first.
func (s *DatasetService) List(ctx context.Context, userID uint) ([]model.Dataset, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	datasets, err := s.datasets.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr("list datasets", err)
	}
	return datasets, nil
}

func (s *DatasetService) Get(ctx context.Context, userID uint, id string) (*model.Dataset, error) {
	if userID == 0 || id == "" {
		return nil, ErrInvalidInput
	}
	return s.get(ctx, userID, id)
}

// Chart maps the dataset's sample rows onto one point per row.
func (s *DatasetService) Chart(ctx context.Context, userID uint, id string, req ChartRequest) (*ChartResult, error) {
	// an empty or unknown key still yields one point per sample row
	xKey := strings.TrimSpace(req.XKey)
	yKey := strings.TrimSpace(req.YKey)
	chartType, err := chart.ParseType(req.Type)
	if err != nil {
		return nil, ErrInvalidInput
	}

	dataset, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &ChartResult{
		Type:   chartType,
		XKey:   xKey,
		YKey:   yKey,
		Points: chart.Map(dataset.SampleRows, xKey, yKey),
	}, nil
}

func (s *DatasetService) get(ctx context.Context, userID uint, id string) (*model.Dataset, error) {
	dataset, err := s.datasets.GetByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, storeErr("load dataset", err)
	}
	if dataset == nil {
		return nil, ErrDatasetNotFound
	}
	return dataset, nil
}

func (s *DatasetService) inspect(file *UploadFile) (tabular.Preview, tabular.MediaType, error) {
	if s.maxUploadBytes > 0 && int64(len(file.Data)) > s.maxUploadBytes {
		return tabular.Preview{}, "", ErrFileTooLarge
	}
	mediaType, err := tabular.DetectMediaType(file.ContentType, file.Filename, file.Data)
	if err != nil {
		return tabular.Preview{}, "", err
	}
	preview, err := tabular.Parse(file.Data, mediaType)
	if err != nil {
		return tabular.Preview{}, "", err
	}
	return preview, mediaType, nil
}

func (s *DatasetService) upload(ctx context.Context, userID uint, mediaType tabular.MediaType, data []byte) (string, error) {
	if s.blobs == nil {
		return "", storeErr("upload dataset file", fmt.Errorf("blob store is not configured"))
	}
	path := fmt.Sprintf("%d/%d-%s.%s", userID, s.now().UnixMilli(), uuid.NewString(), mediaType.Extension())
	stored, err := s.blobs.Upload(ctx, path, string(mediaType), data)
	if err != nil {
		return "", storeErr("upload dataset file", err)
	}
	return stored, nil
}

func (s *DatasetService) removeBlob(ctx context.Context, path string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(context.WithoutCancel(ctx), path); err != nil {
		s.logger.Warn("remove dataset file failed", zap.String("path", path), zap.Error(err))
	}
}

func applyPreview(dataset *model.Dataset, preview tabular.Preview, path string, size int64) {
	rowCount := preview.RowCount
	dataset.Columns = preview.Columns
	dataset.SampleRows = preview.SampleRows
	dataset.RowCount = &rowCount
	dataset.FilePath = &path
	dataset.FileSize = &size
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
