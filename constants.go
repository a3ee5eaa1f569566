package unleash

import "time"

const version = "1.0.0"

// DefaultPollInterval is used by AutoPoll when no refresh mode is configured.
const DefaultPollInterval = 15 * time.Second

// DefaultHTTPTimeout is the timeout of the built-in HTTP fetcher.
const DefaultHTTPTimeout = 10 * time.Second

// FetchStatus describes the outcome of a toggle fetch.
type FetchStatus int

const (
	// Fetched indicates that a new toggle set was fetched.
	Fetched FetchStatus = 0
	// NotModified indicates that the toggles did not change since the last fetch.
	NotModified FetchStatus = 1
	// Failure indicates that the fetch failed.
	Failure FetchStatus = 2
)

const (
	no  = 0
	yes = 1
)

// async statuses
const (
	pending   = 0
	completed = 1
)
