/*
Package log provides structured logging for shepherd via zerolog.

A single global logger is initialized once at startup and shared by all
packages. Components obtain child loggers with WithComponent so every line
carries a component field, and the scheduler attaches pod/node fields to its
placement events. Console output is the default; JSON output is available for
log aggregation.
*/
package log
