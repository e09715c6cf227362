// Package notify keeps the process-wide list of user-visible status
// messages.
//
// The Center is an observable in-memory log: entries live for the session,
// carry a severity plus optional attached media and callbacks, and every
// mutation fires the registered subscribers after the list has changed.
// Nothing here persists; the on-disk state of the project is unaffected by
// what the user has or has not dismissed.
package notify
