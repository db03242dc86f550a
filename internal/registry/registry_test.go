package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	disconnects int
}

func (c *fakeConn) Disconnect() { c.disconnects++ }

func TestClearWithNoConnectionIsNoOp(t *testing.T) {
	reg := New()
	assert.NotPanics(t, reg.Clear)
	assert.Nil(t, reg.Get())
}

func TestClearDisconnectsAndEmptiesSlot(t *testing.T) {
	reg := New()
	conn := &fakeConn{}
	reg.Set(conn)

	reg.Clear()

	assert.Equal(t, 1, conn.disconnects)
	assert.Nil(t, reg.Get())

	reg.Clear()
	assert.Equal(t, 1, conn.disconnects)
}

func TestSetReplacesHandle(t *testing.T) {
	reg := New()
	first := &fakeConn{}
	second := &fakeConn{}

	reg.Set(first)
	reg.Set(second)
	assert.Same(t, second, reg.Get().(*fakeConn))
}

func TestDropRemovesOnlyOwnHandle(t *testing.T) {
	reg := New()
	stale := &fakeConn{}
	active := &fakeConn{}

	reg.Set(active)
	reg.Drop(stale)
	assert.Same(t, active, reg.Get().(*fakeConn))

	reg.Drop(active)
	assert.Nil(t, reg.Get())
	assert.Zero(t, active.disconnects)
}
