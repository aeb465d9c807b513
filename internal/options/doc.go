// Package options contains the bundled device option providers: the power
// actions, accessibility, flight mode, Wi-Fi, sound profile and mobile data.
//
// Providers read and write device state through a settings.Backend and reach
// other system components through a Launcher and a confirm.PowerController.
// Plugins returns them paired with their registration gates.
package options
