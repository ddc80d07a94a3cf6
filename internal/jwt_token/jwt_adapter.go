package jwttoken

import (
	authmw "familyhub/pkg/platform/middleware/auth"
)

// Validator exposes JWTService through the narrow interface the auth
// middleware consumes, keeping the jwt library out of pkg/platform.
type Validator struct {
	service *JWTService
}

func NewValidator(service *JWTService) *Validator {
	return &Validator{service: service}
}

func (v *Validator) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{UserID: claims.UserID, JTI: claims.ID}, nil
}
