package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID string `json:"id"`
}

func TestListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	items, found, err := LoadList[entry](ctx, s, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, items)

	require.NoError(t, SaveList[entry](ctx, s, "k", nil))
	raw, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "[]", raw)

	items, found, err = LoadList[entry](ctx, s, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []entry{}, items)

	require.NoError(t, SaveList(ctx, s, "k", []entry{{ID: "a"}, {ID: "b"}}))
	items, _, err = LoadList[entry](ctx, s, "k")
	require.NoError(t, err)
	assert.Equal(t, []entry{{ID: "a"}, {ID: "b"}}, items)
}

func TestLoadListCorrupt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", `{"id":"a"}`))

	_, found, err := LoadList[entry](ctx, s, "k")
	assert.True(t, found)
	assert.Error(t, err)
}
