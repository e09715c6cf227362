// Package providers defines the boundary to external generation services.
//
// The core treats every vendor as interchangeable behind the Provider
// interface: submit a request, poll a task id until it reaches a terminal
// state. Credential material is resolved through an injected Credentials
// source rather than static hooks so tests can substitute it. Vendor
// subpackages implement the HTTP glue.
package providers
