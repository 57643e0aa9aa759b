package jwttoken

import (
	"friendsd/internal/platform/middleware"
)

// MiddlewareAdapter exposes JWTService through middleware.TokenValidator.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.HostClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.HostClaims{HostID: claims.HostID, TokenID: claims.ID}, nil
}
