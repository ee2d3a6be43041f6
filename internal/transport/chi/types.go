package chi

// errorCode is the machine-readable error kind returned to clients.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeUnauthorized      errorCode = "unauthorized"
	codeInvalidTarget     errorCode = "invalid_target"
	codeInvalidOptions    errorCode = "invalid_options"
	codeDuplicateID       errorCode = "duplicate_candidate"
	codeDimensionMismatch errorCode = "dimension_mismatch"
	codeNotFound          errorCode = "not_found"
	codeForbidden         errorCode = "forbidden"
	codeInternalError     errorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// SelectionRequest is the body of POST /v1/selections. Exactly one of
// Candidates, Paths or Dir is set.
type SelectionRequest struct {
	Target            int     `json:"target"`
	Strategy          *string `json:"strategy,omitempty"`
	WindowSize        *int    `json:"window_size,omitempty"`
	Seed              *int64  `json:"seed,omitempty"`
	DuplicateDistance *int    `json:"duplicate_distance,omitempty"`
	ResolveNearest    bool    `json:"resolve_nearest,omitempty"`

	Candidates []CandidateInput `json:"candidates,omitempty"`

	Paths []string `json:"paths,omitempty"`

	Dir       string   `json:"dir,omitempty"`
	Recursive bool     `json:"recursive,omitempty"`
	Include   []string `json:"include,omitempty"`
	Exclude   []string `json:"exclude,omitempty"`
}

// CandidateInput is a precomputed fingerprint.
type CandidateInput struct {
	ID string `json:"id"`
	// Order defaults to the position in the request.
	Order       *int   `json:"order,omitempty"`
	Fingerprint string `json:"fingerprint"`
	// Width defaults to the server's layout width.
	Width int `json:"width,omitempty"`
}

// SelectionResponse is the body returned by POST /v1/selections.
type SelectionResponse struct {
	Strategy        string            `json:"strategy"`
	Selected        []string          `json:"selected"`
	Excluded        []string          `json:"excluded"`
	NearestIncluded map[string]string `json:"nearest_included,omitempty"`
	Buckets         []BucketResponse  `json:"buckets,omitempty"`
	Skipped         []SkippedItem     `json:"skipped,omitempty"`
	Inputs          int               `json:"inputs"`
}

// BucketResponse describes how one bucket was sampled.
type BucketResponse struct {
	Key      int     `json:"key"`
	Label    string  `json:"label"`
	Size     int     `json:"size"`
	Kept     int     `json:"kept"`
	Excluded int     `json:"excluded"`
	Stride   float64 `json:"stride"`
}

// SkippedItem is a source that could not be decoded.
type SkippedItem struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// FingerprintRequest is the body of POST /v1/fingerprints.
type FingerprintRequest struct {
	Images []ImageInput `json:"images"`
}

// ImageInput carries base64-encoded image bytes. encoding/json decodes
// base64 strings into []byte.
type ImageInput struct {
	ID   string `json:"id"`
	Data []byte `json:"data"`
}

// FingerprintResponse is the body returned by POST /v1/fingerprints.
type FingerprintResponse struct {
	Fingerprints []FingerprintItem `json:"fingerprints"`
	Skipped      []SkippedItem     `json:"skipped,omitempty"`
}

// FingerprintItem is one extracted fingerprint in hex, most significant word first.
type FingerprintItem struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Width       int    `json:"width"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
