package domain

import (
	"fmt"
	"sync/atomic"
)

// Source identifies one of the two physical search backends.
type Source string

const (
	SourceGraph    Source = "graph"
	SourceDocument Source = "document"
)

// Label returns the human facing backend name used in telemetry.
func (s Source) Label() string {
	switch s {
	case SourceGraph:
		return "KHub"
	case SourceDocument:
		return "Confluence"
	default:
		return string(s)
	}
}

// IsValid checks if the source is one of the known backends
func (s Source) IsValid() bool {
	return s == SourceGraph || s == SourceDocument
}

// ParseSource converts a string to a Source.
func ParseSource(value string) (Source, error) {
	s := Source(value)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, value)
	}
	return s, nil
}

// Reachability is the tri-state liveness of the primary backend.
type Reachability int32

const (
	ReachabilityUnknown Reachability = iota
	ReachabilityReachable
	ReachabilityUnreachable
)

func (r Reachability) String() string {
	switch r {
	case ReachabilityReachable:
		return "reachable"
	case ReachabilityUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// StatusText is the indicator text shown next to the search control.
func (r Reachability) StatusText() string {
	switch r {
	case ReachabilityReachable:
		return "Server available"
	case ReachabilityUnreachable:
		return "Server not reachable"
	default:
		return "Initializing"
	}
}

// ParseReachability is the inverse of String. Unknown input maps to
// ReachabilityUnknown.
func ParseReachability(value string) Reachability {
	switch value {
	case "reachable":
		return ReachabilityReachable
	case "unreachable":
		return ReachabilityUnreachable
	default:
		return ReachabilityUnknown
	}
}

// ReachabilityState holds the process-wide reachability. It is written by the
// liveness monitor only and read by the submission gate.
type ReachabilityState struct {
	v atomic.Int32
}

func (s *ReachabilityState) Load() Reachability {
	return Reachability(s.v.Load())
}

func (s *ReachabilityState) Store(r Reachability) {
	s.v.Store(int32(r))
}
