// Package navigation decides which top-level tree the app mounts for a given
// combination of platform, viewport class, and session state, and keeps that
// decision current as either input changes.
package navigation

import "github.com/vahire/vahire/internal/client/session"

// Platform is the runtime the client is executing in.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Viewport is the coarse width class of the window.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportTablet  Viewport = "tablet"
	ViewportPhone   Viewport = "phone"
)

// Tree identifies a top-level navigator.
type Tree string

const (
	TreeAuth Tree = "auth"
	TreeMain Tree = "main"
)

// Resolve picks the tree to mount. It is total and side-effect free.
//
// Desktop web always gets the main tree: that surface doubles as the public
// marketing/browsing entry point and never gates on authentication. On every
// other surface, guests may browse without onboarding, but registered users
// must finish onboarding first.
//
// A state that claims to be authenticated without a user or tokens should be
// unreachable; if it ever shows up, fail safe toward re-authentication.
func Resolve(p Platform, v Viewport, st session.State) Tree {
	if p == PlatformWeb && v == ViewportDesktop {
		return TreeMain
	}

	if st.Authenticated && (st.User == nil || st.Tokens == nil) {
		return TreeAuth
	}

	if (st.Authenticated || st.GuestMode) && (st.GuestMode || st.ProfileComplete) {
		return TreeMain
	}
	return TreeAuth
}
