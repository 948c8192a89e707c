package enrichment

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// newBreaker builds the circuit breaker shared by the enrichment
// clients: trip after five consecutive failures, probe again after
// twenty seconds. A tripped breaker turns provider calls into fast
// absences instead of stacking timeouts per lookup.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    3 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}
