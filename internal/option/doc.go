// Package option defines the contract every device option provider implements.
// A provider is one togglable device feature (Wi-Fi, flight mode, sound profile,
// power off, ...) shown as an item in the quick-settings popup.
package option
