package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFake_AfterFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(time.Second)

	select {
	case <-ch:
		t.Fatal("fired before advance")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-ch:
		assert.Equal(t, epoch.Add(time.Second), got)
	default:
		t.Fatal("did not fire after advance")
	}
}

func TestFake_AfterNonPositive(t *testing.T) {
	c := Fake(epoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("zero duration should fire immediately")
	}
}

func TestFake_TickerStop(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Minute)

	c.Advance(time.Minute)
	require.Len(t, tk.C, 1)
	<-tk.C

	tk.Stop()
	c.Advance(time.Minute)
	assert.Len(t, tk.C, 0)
}

func TestFake_SetDoesNotFire(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(time.Second)
	c.Set(epoch.Add(time.Hour))

	assert.Equal(t, epoch.Add(time.Hour), c.Now())
	assert.Len(t, ch, 0)
}

func TestMillis(t *testing.T) {
	assert.Equal(t, int64(1748779200000), Millis(epoch))
}
