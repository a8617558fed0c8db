package auth

import (
	"strings"

	"github.com/frahmantamala/workforce-presence/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", strings.TrimSpace(d.Username)).Required().MaxLength(100)
	v.Field("password", d.Password).Required()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("refresh_token", d.RefreshToken).Required()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
