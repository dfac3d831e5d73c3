// Package eventbus implements ports.EventPublisher over the supported buses.
//
// A Transport moves one serialized envelope to a physical destination. Publisher
// wraps a Transport with logging and Prometheus counters and is what the use
// cases receive. Every transport makes exactly one attempt per call; a failure
// is reported as *errs.TransportError with an HTTP-like status code.
package eventbus
