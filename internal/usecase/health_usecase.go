package usecase

import (
	"context"
	"time"
)

// Pinger is any dependency that can report its own liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	deps map[string]Pinger
}

// NewHealthUsecase checks the named dependencies. A nil Pinger is reported as "disabled".
func NewHealthUsecase(deps map[string]Pinger) HealthUsecase {
	return &healthUsecase{deps: deps}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := map[string]string{"status": "ok"}
	healthy := true
	for name, dep := range u.deps {
		switch {
		case dep == nil:
			result[name] = "disabled"
		case dep.Ping(ctx) != nil:
			result[name] = "down"
			healthy = false
		default:
			result[name] = "up"
		}
	}
	if !healthy {
		result["status"] = "degraded"
	}
	return result, healthy
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
