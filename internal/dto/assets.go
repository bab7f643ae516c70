package dto

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type CreateRepositoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (r CreateRepositoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 150)),
	)
}

type UpdateRepositoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type CreateNodeRequest struct {
	RepositoryID uuid.UUID `json:"repositoryId"`
	Title        string    `json:"title"`
	Date         string    `json:"date"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	Color        string    `json:"color"`
}

func (r CreateNodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RepositoryID, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Date, validation.Required),
	)
}

type UpdateNodeRequest struct {
	Title   *string   `json:"title"`
	Date    *string   `json:"date"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
	Color   *string   `json:"color"`
}

type AddAttachmentRequest struct {
	Filename   string `json:"filename"`
	FileType   string `json:"fileType"`
	FileSize   int64  `json:"fileSize"`
	StorageKey string `json:"storageKey"`
	FileURL    string `json:"fileUrl"`
}

func (r AddAttachmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filename, validation.Required),
		validation.Field(&r.FileType, validation.Required),
		validation.Field(&r.StorageKey, validation.Required),
		validation.Field(&r.FileURL, validation.Required),
	)
}

type FileSizeRequest struct {
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

func (r FileSizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FileSize, validation.Required, validation.Min(int64(1))),
	)
}
