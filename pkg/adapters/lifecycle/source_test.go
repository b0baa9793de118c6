package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/argumentaire/pkg/core"
)

func TestSource_Forward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event)
	src := NewSource(in, WithSettle(0))
	require.NoError(t, src.Start(ctx))

	go func() {
		in <- core.Event{Type: core.EventCreate, Path: "a.json"}
		in <- core.Event{Type: core.EventModify, Path: "a.json"}
		close(in)
	}()

	var got []string
	for e := range src.Events() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{"CREATE a.json", "MODIFY a.json"}, got)
}

func TestSource_CoalescesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event)
	src := NewSource(in, WithSettle(30*time.Millisecond))
	require.NoError(t, src.Start(ctx))

	go func() {
		in <- core.Event{Type: core.EventCreate, Path: "a.json"}
		in <- core.Event{Type: core.EventModify, Path: "a.json"}
		in <- core.Event{Type: core.EventModify, Path: "a.json"}
	}()

	select {
	case e := <-src.Events():
		assert.Equal(t, "MODIFY a.json", e.String())
	case <-time.After(2 * time.Second):
		t.Fatal("coalesced event not delivered")
	}

	select {
	case e := <-src.Events():
		t.Fatalf("unexpected extra event %v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSource_FlushesOnClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 1)
	src := NewSource(in, WithSettle(time.Hour))
	require.NoError(t, src.Start(ctx))

	in <- core.Event{Type: core.EventDelete, Path: "a.json"}
	close(in)

	var got []string
	for e := range src.Events() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{"DELETE a.json"}, got)
}

func TestSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	src := NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))
	cancel()

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}
