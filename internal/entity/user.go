package entity

import "strings"

// User is an agent directory entry. Imports resolve "agent" columns to a
// user uid through the lowercased email.
type User struct {
	ID    string `json:"id,omitempty"`
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DirectoryKey returns the lookup key used for agent resolution.
func (u User) DirectoryKey() string {
	return strings.ToLower(strings.TrimSpace(u.Email))
}

// ResolvedUID prefers the explicit uid and falls back to the document id,
// matching how directory records are stored.
func (u User) ResolvedUID() string {
	if u.UID != "" {
		return u.UID
	}
	return u.ID
}
