package model

// FormatUnknown is the format label used when discovery yields nothing.
const FormatUnknown = "unknown"

// MediaInfo is the ephemeral result of one discovery probe. It is built,
// returned and discarded within a single call; nothing persists it.
type MediaInfo struct {
	// Duration in whole seconds, when the engine could determine it.
	Duration *int64 `json:"duration"`

	// Width and Height are set only when a video-typed stream was
	// negotiated.
	Width  *int `json:"width"`
	Height *int `json:"height"`

	Bitrate *int `json:"bitrate"`

	// Format is the best-known container or media type label.
	Format string `json:"format"`

	// FormatGuessed marks a Format inferred from the source URL suffix
	// rather than negotiated; it may be wrong for mislabeled URLs.
	FormatGuessed bool `json:"formatGuessed"`
}
