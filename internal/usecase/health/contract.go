package health

import "context"

// CachePinger checks shared cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ExtractorChecker runs a fingerprint extraction self-test.
type ExtractorChecker interface {
	HealthCheck(ctx context.Context) error
}
