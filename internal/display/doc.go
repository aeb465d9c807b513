// Package display draws the quick settings popup with GTK4 and libadwaita.
// The popup is a layer-shell surface built from a skin template; every
// method runs on the GTK main loop.
package display
