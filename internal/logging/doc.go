// Package logging defines the Logger interface used across capplan and its
// zerolog and standard-library adapters. Setup builds the process logger from
// the -log-level and -log-file flags.
package logging
