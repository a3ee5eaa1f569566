package unleash

// FetchResponse represents the result of a single toggle fetch.
type FetchResponse struct {
	Status FetchStatus
	// Toggles holds the fetched toggles. It is only meaningful
	// when Status is Fetched.
	Toggles ToggleSet
	// ETag holds the entity tag reported by the server, if any.
	ETag string
}

// IsFailed returns true if the fetch is failed, otherwise false.
func (response FetchResponse) IsFailed() bool {
	return response.Status == Failure
}

// IsNotModified returns true if the fetch resulted a 304 Not Modified code, otherwise false.
func (response FetchResponse) IsNotModified() bool {
	return response.Status == NotModified
}

// IsFetched returns true if a new toggle set was fetched, otherwise false.
func (response FetchResponse) IsFetched() bool {
	return response.Status == Fetched
}

func (status FetchStatus) String() string {
	switch status {
	case Fetched:
		return "fetched"
	case NotModified:
		return "not modified"
	case Failure:
		return "failure"
	}
	return "unknown"
}
