// Package logging contains the log configuration shared by all relay processes.
package logging
