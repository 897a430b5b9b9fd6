package types

// ModelEntry is one model in the OpenAI-compatible GET /v1/models listing.
type ModelEntry struct {
	// Stable identifier for the model.
	// example: gpt-oss:120b-cloud
	ID string `json:"id" example:"gpt-oss:120b-cloud"`
	// Always "model".
	Object string `json:"object"`
	// Creation time (unix seconds).
	// example: 1700000000
	Created int64 `json:"created" example:"1700000000"`
	// Owner of the model, "library" for stock Ollama models.
	OwnedBy string `json:"owned_by"`
}

// ModelList wraps the models returned by GET /v1/models.
type ModelList struct {
	// Always "list".
	Object string       `json:"object"`
	Data   []ModelEntry `json:"data"`
}

// TagModel is one model in the native GET /api/tags listing.
type TagModel struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
	Digest     string `json:"digest"`
}

// TagsResponse wraps the models returned by GET /api/tags.
type TagsResponse struct {
	Models []TagModel `json:"models"`
}

// VersionResponse is returned by GET /api/version.
type VersionResponse struct {
	Version string `json:"version"`
}
