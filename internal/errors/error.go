package errors

import "errors"

var (
	ErrGameNotFound     = errors.New("game state not found")
	ErrSessionNotFound  = errors.New("session was not found")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownTopic     = errors.New("unknown topic")
	ErrInvariant        = errors.New("invariant violation")
	ErrBusTransport     = errors.New("bus unreachable")
	ErrStoreTransport   = errors.New("keyed store unreachable")
	ErrConfig           = errors.New("configuration error")
)

// Kind groups errors by how a worker must react to them.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindSerialization
	KindNotFound
	KindInvariant
	KindConfig
)

func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrInvariant):
		return KindInvariant
	case errors.Is(err, ErrBusTransport), errors.Is(err, ErrStoreTransport):
		return KindTransport
	case errors.Is(err, ErrMalformedPayload):
		return KindSerialization
	case errors.Is(err, ErrGameNotFound), errors.Is(err, ErrSessionNotFound):
		return KindNotFound
	}
	return KindUnknown
}

// IsFatal reports whether err must stop the worker that observed it.
func IsFatal(err error) bool {
	k := Classify(err)
	return k == KindInvariant || k == KindTransport || k == KindConfig
}
