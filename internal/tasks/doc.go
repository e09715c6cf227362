// Package tasks tracks outstanding generation requests against external
// providers.
//
// A Task is a thin state machine over the owning shot's sidecar: every
// poll merges the provider's reply into tasks/<id> so partial progress
// stays visible, and the submitted -> processing -> succeed/failed
// transitions are driven solely by polling. Terminal states are sticky. A
// per-task guard makes concurrent CheckStatus calls collapse into one
// polling loop; exhausting the retry budget leaves the task in its last
// known state for a later manual resume.
package tasks
