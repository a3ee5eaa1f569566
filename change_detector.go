package unleash

// togglesChanged reports whether a freshly fetched set differs from the
// cached one. The comparison is structural, so two fetches that decode
// to equal but distinct values are not a change.
func togglesChanged(cached, fetched ToggleSet) bool {
	return !cached.Equal(fetched)
}
