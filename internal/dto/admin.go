package dto

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type AdminUpdateUserRequest struct {
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email"`
	IsActive    *bool   `json:"isActive"`
}

func (r AdminUpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	)
}

type ChangePlanRequest struct {
	PlanName string `json:"planName"`
}

func (r ChangePlanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PlanName, validation.Required),
	)
}

type AdjustStorageRequest struct {
	StorageLimit int64 `json:"storageLimit"`
}

func (r AdjustStorageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StorageLimit, validation.Required, validation.Min(int64(1))),
	)
}
