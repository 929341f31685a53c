package directions

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a route could not be produced.
type Kind string

const (
	KindNotEnoughStops Kind = "NOT_ENOUGH_STOPS"
	KindUnroutable     Kind = "UNROUTABLE_LOCATION"
	KindNetwork        Kind = "NETWORK_ERROR"
	KindProvider       Kind = "PROVIDER_ERROR"
)

var (
	// ErrNotEnoughStops is returned when fewer than two coordinates are given.
	ErrNotEnoughStops = errors.New("at least two stops are required for a route")

	// ErrUnroutable is returned when the road network does not connect the stops.
	ErrUnroutable = errors.New("unroutable location")

	// ErrNetwork is returned when the provider could not be reached.
	ErrNetwork = errors.New("directions network error")

	// ErrProvider is returned when the provider rejected the request.
	ErrProvider = errors.New("directions provider error")
)

// Failure is the only error type FetchRoute returns for routing problems.
type Failure struct {
	Kind       Kind
	Message    string
	StatusCode int   // Provider HTTP status, 0 when not applicable
	Points     []int // Indexes of the coordinates that could not be routed
	Err        error
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(f.sentinel().Error())
	if f.Message != "" {
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	if len(f.Points) > 0 {
		fmt.Fprintf(&b, " (stops %v)", f.Points)
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

// Is lets errors.Is match a Failure against the package sentinels.
func (f *Failure) Is(target error) bool {
	return target == f.sentinel()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) sentinel() error {
	switch f.Kind {
	case KindNotEnoughStops:
		return ErrNotEnoughStops
	case KindUnroutable:
		return ErrUnroutable
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrProvider
	}
}

// KindOf reports the failure kind carried by err, or "" if err is not a routing failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// ParseKind maps a wire code back to a Kind. Unknown codes become KindProvider.
func ParseKind(code string) Kind {
	switch k := Kind(code); k {
	case KindNotEnoughStops, KindUnroutable, KindNetwork, KindProvider:
		return k
	default:
		return KindProvider
	}
}
