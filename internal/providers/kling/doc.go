// Package kling implements the Kling video-generation API as a
// providers.Provider.
//
// Requests are signed with a short-lived HS256 JWT minted from the access
// and secret keys resolved through the injected credential source. The
// client retries transient HTTP failures with capped backoff and can route
// through a local forwarding proxy when the caller runs behind one.
package kling
