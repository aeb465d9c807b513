// Package daemon wires the option providers, the popup controller and the
// events that close the popup into devoptsd. It also watches the daemon
// config for hot reload.
package daemon
