package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole is carried in admin access tokens.
type UserRole string

const RoleAdmin UserRole = "ADMIN"

// AdminUser is an administrator allowed to manage periods and read results.
type AdminUser struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// JWTClaims represents the JWT payload for admin access tokens.
type JWTClaims struct {
	AdminID  int64    `json:"admin_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
