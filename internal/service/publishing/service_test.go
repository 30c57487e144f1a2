package publishing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agribalance/internal/notify"
)

type staticRows [][]string

func (s staticRows) ExportRows(context.Context) ([][]string, error) { return s, nil }

type recordingPublisher struct {
	sheetRange string
	rows       [][]string
	err        error
}

func (p *recordingPublisher) ReplaceRange(_ context.Context, sheetRange string, rows [][]string) error {
	p.sheetRange, p.rows = sheetRange, rows
	return p.err
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	bus := notify.NewBus(time.Minute, nil)
	defer bus.Close()

	rows := staticRows{{"ID"}, {"a"}, {"b"}}
	pub := &recordingPublisher{}
	svc := NewService(rows, pub, "Formulaciones!A1", bus, nil)

	n, err := svc.Publish(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Formulaciones!A1", pub.sheetRange)
	assert.Equal(t, [][]string(rows), pub.rows)
	require.Len(t, bus.Active(), 1)
	assert.Equal(t, notify.LevelSuccess, bus.Active()[0].Level)

	pub.err = errors.New("quota")
	_, err = svc.Publish(ctx)
	require.Error(t, err)
	assert.Equal(t, notify.LevelError, bus.Active()[1].Level)
}

func TestPublishNotConfigured(t *testing.T) {
	svc := NewService(staticRows{}, nil, "A1", nil, nil)
	assert.False(t, svc.Enabled())
	_, err := svc.Publish(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
