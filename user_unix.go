//go:build !windows

package main

import (
	"os/user"
	"strings"
)

// displayName returns the first GECOS sub-field; the rest holds office and
// phone details on most systems.
func displayName(u *user.User) string {
	name, _, _ := strings.Cut(u.Name, ",")
	return strings.TrimSpace(name)
}

func loginName(u *user.User) string {
	return u.Username
}
