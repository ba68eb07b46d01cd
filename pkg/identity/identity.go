// Package identity describes who is using lostfound. Sessions and sign-in
// live elsewhere; this package only reads the result.
package identity

import "strings"

// Identity is the signed-in user as seen by the rest of the program.
type Identity struct {
	UID         string
	DisplayName string
	AvatarURL   string
}

// SignedIn reports whether the identity carries a user id.
func (i Identity) SignedIn() bool {
	return strings.TrimSpace(i.UID) != ""
}

// Provider reports the current user, if any.
type Provider interface {
	Current() (Identity, bool)
}

// Static always reports the same identity. An empty UID means nobody is
// signed in.
type Static Identity

// Current implements Provider.
func (s Static) Current() (Identity, bool) {
	id := Identity(s)
	return id, id.SignedIn()
}

// Anonymous is a provider with nobody signed in.
var Anonymous Provider = Static{}
