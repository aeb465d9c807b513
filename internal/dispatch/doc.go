// Package dispatch runs a popup session: it opens the composed popup, routes
// item activations and provider change notifications to targeted slot
// refreshes, and tears everything down on close.
//
// Controller state is owned by a single event loop. Anything arriving from
// another goroutine (settings watches, D-Bus signals, timers, activation
// completions) is posted onto that loop first.
package dispatch
