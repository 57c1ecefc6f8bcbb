package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT payload issued to the operator.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
