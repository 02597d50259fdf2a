package model

import "strings"

// User is a User Directory record.  Roles are admin, hotel_admin and client.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
