// Package daemon provides supporting pieces for plingd: file watchers
// that propagate external state and config changes into a running daemon,
// and the rate-limited self-notification path.
package daemon
