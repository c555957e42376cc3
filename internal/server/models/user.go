// Package models defines the persistent rows of the access-management server.
package models

import "time"

// RoleBasicUser is the role assigned to every account at registration.
// Privileged roles are granted out of band.
const RoleBasicUser = "Basic User"

// User is an account row. PasswordHash is the HMAC-SHA512 digest of the
// password keyed with PasswordSalt; neither is ever exposed over the API.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	PasswordSalt []byte
	Role         string
	CreatedAt    time.Time
}
