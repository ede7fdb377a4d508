package domain

import "time"

// Claims are the identity facts carried by a verified session token.
type Claims struct {
	Subject   string
	Name      string
	Role      Role
	TokenID   string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}
