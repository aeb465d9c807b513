// Package feedback plays the short sounds that accompany sound profile
// changes. Sounds are decoded with beep (WAV, OGG and MP3), cached in memory
// and invalidated when the file on disk changes.
package feedback
