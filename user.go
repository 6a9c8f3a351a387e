package main

import (
	"os"
	"os/user"
)

// CurrentUserResolver supplies the name printed on the author line.
type CurrentUserResolver interface {
	// FullName returns the user's display name, which may be empty.
	FullName() (string, error)
	// LoginName returns the bare account name.
	LoginName() string
}

// ResolveAuthor returns the full name of the user, falling back to the login
// name when the full name cannot be resolved or is empty.
func ResolveAuthor(r CurrentUserResolver) string {
	name, err := r.FullName()
	if err != nil || name == "" {
		return r.LoginName()
	}
	return name
}

// osUserResolver looks the current user up in the operating system's
// account database. displayName and loginName are per-platform.
type osUserResolver struct {
	current func() (*user.User, error)
}

// NewOSUserResolver returns a resolver backed by os/user.
func NewOSUserResolver() CurrentUserResolver {
	return osUserResolver{current: user.Current}
}

func (r osUserResolver) FullName() (string, error) {
	u, err := r.current()
	if err != nil {
		return "", err
	}
	return displayName(u), nil
}

func (r osUserResolver) LoginName() string {
	if u, err := r.current(); err == nil && u.Username != "" {
		return loginName(u)
	}
	for _, env := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}
