package spotify

// Track is the slice of track metadata the weekly sync cares about.
type Track struct {
	ID     string
	Name   string
	Artist string // Comma-separated artist names
}
