// Package project models the domain hierarchy rooted at a project
// folder: scenes under SCENES/, shots under each scene, the REFS
// artbook, and the project script. Each level owns its sidecar and its
// children; subtree load failures are isolated so one broken scene
// never takes the whole project down.
package project
