package health

import "context"

// Pinger checks a storage backend's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an external dependency's availability.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
