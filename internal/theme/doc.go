// Package theme loads the CSS applied to the GTK popup.
//
// Themes are looked up in ~/.config/devopts/themes/ first and then among the
// bundled themes. A theme may @import partials, which are inlined at load
// time. User themes are polled and re-applied when the file changes.
package theme
