package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing data dir, API key)
	ExitDataError   = 3 // Data error (malformed metadata, name lists or caches)
)
