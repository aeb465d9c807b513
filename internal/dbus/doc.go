// Package dbus connects devopts to the system and session buses.
//
// On the system bus it calls device services (deviced power requests, the
// system popup launcher, application activation) and listens for the
// home-raise signal sent when the power key is pressed. On the session bus
// it exports org.devopts.Popup so other processes can open and close the
// popup.
package dbus
