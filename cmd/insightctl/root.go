package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gopherai-insight/internal/model"
	"gopherai-insight/internal/pkg/tabular"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "insightctl",
		Short:         "Inspect dataset files the way the insight server does",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPreviewCmd(), newChartCmd(), newPromptCmd())
	return root
}

// loadedFile is a local dataset file parsed into its preview.
type loadedFile struct {
	Name      string
	Size      int64
	MediaType tabular.MediaType
	Preview   tabular.Preview
}

func loadFile(path, declaredType string) (*loadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mediaType, err := tabular.DetectMediaType(declaredType, filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	preview, err := tabular.Parse(data, mediaType)
	if err != nil {
		return nil, err
	}
	return &loadedFile{
		Name:      filepath.Base(path),
		Size:      int64(len(data)),
		MediaType: mediaType,
		Preview:   preview,
	}, nil
}

// dataset builds the record the server would store for the file.
func (f *loadedFile) dataset(name string) *model.Dataset {
	if name == "" {
		name = f.Name
	}
	rowCount := f.Preview.RowCount
	return &model.Dataset{
		Name:       name,
		Columns:    f.Preview.Columns,
		SampleRows: f.Preview.SampleRows,
		RowCount:   &rowCount,
		FileSize:   &f.Size,
	}
}

func (f *loadedFile) humanSize() string {
	return humanize.Bytes(uint64(f.Size))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
