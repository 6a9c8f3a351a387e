//go:build windows

package main

import (
	"os/user"
	"strings"
)

// displayName returns the account's display name as reported by the
// Windows user database.
func displayName(u *user.User) string {
	return strings.TrimSpace(u.Name)
}

// loginName strips the DOMAIN\ prefix Windows puts on account names.
func loginName(u *user.User) string {
	if i := strings.LastIndexByte(u.Username, '\\'); i >= 0 {
		return u.Username[i+1:]
	}
	return u.Username
}
