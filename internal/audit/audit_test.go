package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorderFunc func(ctx context.Context, e Entry) error

func (f recorderFunc) Record(ctx context.Context, e Entry) error { return f(ctx, e) }

func TestNewEntryCarriesOperator(t *testing.T) {
	ctx := WithOperator(context.Background(), "ana")
	e := NewEntry(ctx, OpRemoteUnlock, "abc123")

	assert.NotEqual(t, [16]byte{}, [16]byte(e.ID))
	assert.Equal(t, "ana", e.Operator)
	assert.Equal(t, "abc123", e.DeviceID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestOperatorFromEmptyContext(t *testing.T) {
	assert.Empty(t, OperatorFrom(context.Background()))
}

func TestMultiRecordsEverywhere(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	m := Multi{
		recorderFunc(func(context.Context, Entry) error { calls++; return boom }),
		LogRecorder{},
		recorderFunc(func(context.Context, Entry) error { calls++; return errors.New("second") }),
	}

	err := m.Record(context.Background(), NewEntry(context.Background(), OpProvisionTempPassword, "abc123"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
