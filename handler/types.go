package handler

// Response types shared by every host of the deck library

// ExamplesResponse is returned by /examples
type ExamplesResponse struct {
	Examples []Example `json:"examples"`
	Count    int       `json:"count"`
}

// Example is one deck source file in input storage
type Example struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Renderable bool   `json:"renderable"`
}

// ProcessResponse is returned by /process
type ProcessResponse struct {
	Success    bool     `json:"success"`
	Title      string   `json:"title,omitempty"`
	SlideCount int      `json:"slideCount"`
	Slides     []string `json:"slides"`
	Format     string   `json:"format,omitempty"`
}

// UploadResponse is returned by /upload
type UploadResponse struct {
	Success    bool   `json:"success"`
	Key        string `json:"key"`
	SlideCount int    `json:"slideCount"`
	Manifest   string `json:"manifest"`
}

// StatusResponse is returned by /status
type StatusResponse struct {
	Key       string `json:"key"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DecksResponse is returned by /decks
type DecksResponse struct {
	Decks []string `json:"decks"`
	Count int      `json:"count"`
}

// Manifest describes a rendered deck in output storage
type Manifest struct {
	SourceKey   string          `json:"sourceKey"`
	ProcessedAt string          `json:"processedAt"`
	Title       string          `json:"title,omitempty"`
	SlideCount  int             `json:"slideCount"`
	Slides      []ManifestSlide `json:"slides"`
}

// ManifestSlide locates one rendered slide
type ManifestSlide struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Key    string `json:"key"`
}

// ErrorResponse is returned for all error cases
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Runtime string `json:"runtime,omitempty"`
}

// RootResponse is returned by /
type RootResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Runtime   string   `json:"runtime"`
	Endpoints []string `json:"endpoints"`
	Formats   []string `json:"formats,omitempty"`
}
