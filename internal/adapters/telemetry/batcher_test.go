package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/adapters/telemetry"
)

type collector struct {
	mu     sync.Mutex
	chunks []string
}

func (c *collector) add(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, string(p))
}

func (c *collector) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.chunks...)
}

func TestOutputBatcher_FlushOnSize(t *testing.T) {
	c := &collector{}
	b := telemetry.NewOutputBatcher(5, time.Hour, c.add)
	defer func() { _ = b.Close() }()

	_, err := b.Write([]byte("123"))
	require.NoError(t, err)
	assert.Empty(t, c.all())

	_, err = b.Write([]byte("456"))
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, c.all())
}

func TestOutputBatcher_FlushAfterDelay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := &collector{}
		b := telemetry.NewOutputBatcher(100, 50*time.Millisecond, c.add)
		defer func() { _ = b.Close() }()

		_, err := b.Write([]byte("Generating "))
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
		_, err = b.Write([]byte("tpl-icons\n"))
		require.NoError(t, err)

		time.Sleep(45 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"Generating tpl-icons\n"}, c.all(), "the timer starts with the first write")

		_, err = b.Write([]byte("done\n"))
		require.NoError(t, err)
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"Generating tpl-icons\n", "done\n"}, c.all())
	})
}

func TestOutputBatcher_CloseFlushes(t *testing.T) {
	c := &collector{}
	b := telemetry.NewOutputBatcher(100, time.Hour, c.add)

	_, err := b.Write([]byte("pending"))
	require.NoError(t, err)
	assert.Empty(t, c.all())

	require.NoError(t, b.Close())
	assert.Equal(t, []string{"pending"}, c.all())

	_, err = b.Write([]byte("late"))
	require.Error(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, []string{"pending"}, c.all())
}

func TestOutputBatcher_Defaults(t *testing.T) {
	c := &collector{}
	b := telemetry.NewOutputBatcher(0, 0, c.add)

	payload := make([]byte, telemetry.DefaultSizeLimit)
	_, err := b.Write(payload)
	require.NoError(t, err)

	chunks := c.all()
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], telemetry.DefaultSizeLimit)
	require.NoError(t, b.Close())
}
