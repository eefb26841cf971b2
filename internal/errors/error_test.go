package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err   error
		kind  Kind
		fatal bool
	}{
		{nil, KindUnknown, false},
		{fmt.Errorf("%w: no such game", ErrGameNotFound), KindNotFound, false},
		{fmt.Errorf("%w: no such session", ErrSessionNotFound), KindNotFound, false},
		{fmt.Errorf("%w: bad json", ErrMalformedPayload), KindSerialization, false},
		{fmt.Errorf("%w: turn 3 != 2", ErrInvariant), KindInvariant, true},
		{fmt.Errorf("%w: xadd", ErrBusTransport), KindTransport, true},
		{fmt.Errorf("%w: get", ErrStoreTransport), KindTransport, true},
		{fmt.Errorf("%w: BOARD_SIZE", ErrConfig), KindConfig, true},
		{fmt.Errorf("%w: make-move-cmd", ErrUnknownTopic), KindUnknown, false},
		{context.Canceled, KindUnknown, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, Classify(tc.err), "%v", tc.err)
		assert.Equal(t, tc.fatal, IsFatal(tc.err), "%v", tc.err)
	}
}

func TestInvariantWinsOverPayload(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrInvariant, ErrMalformedPayload)
	assert.Equal(t, KindInvariant, Classify(err))
}
