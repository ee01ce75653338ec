package model

import (
	"time"

	"gorm.io/datatypes"
)

// Dataset is an uploaded table together with the preview extracted from it.
// RowCount counts every row of the source file; SampleRows holds at most a
// handful of them.
type Dataset struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID      uint                        `gorm:"not null;index" json:"user_id"`
	Name        string                      `gorm:"size:256;not null" json:"name"`
	Description *string                     `gorm:"type:text" json:"description"`
	FilePath    *string                     `gorm:"size:512" json:"file_path,omitempty"`
	FileSize    *int64                      `json:"file_size,omitempty"`
	Columns     datatypes.JSONSlice[string] `json:"columns"`
	SampleRows  datatypes.JSONSlice[*Row]   `json:"sample_data"`
	RowCount    *int                        `json:"row_count,omitempty"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}
