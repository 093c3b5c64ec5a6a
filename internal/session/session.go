// Package session carries the authenticated admin's identity into services.
package session

import "errors"

// ErrNoSession is returned when a request has no authenticated admin
var ErrNoSession = errors.New("no admin session")

// Session identifies the admin acting on a request
type Session struct {
	AdminID   string `json:"adminID"`
	FacultyID string `json:"facultyID"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Valid reports whether the session carries the ids the engine stamps on records
func (s Session) Valid() bool {
	return s.AdminID != "" && s.FacultyID != ""
}
