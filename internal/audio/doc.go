// Package audio plays notification sounds. A beep-backed Player decodes
// and caches WAV, OGG and MP3 files, and Sounds maps posted
// notifications to the per-urgency files from the configuration.
package audio
