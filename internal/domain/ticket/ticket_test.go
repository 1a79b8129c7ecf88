package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	now := time.Now().UTC()
	tk := New("alice", now, 30*time.Second)

	assert.NotEmpty(t, tk.UUID)
	assert.Equal(t, "alice", tk.UID)
	assert.Equal(t, now, tk.Created)
	assert.Equal(t, now, tk.Polled)
	assert.Equal(t, now.Add(30*time.Second), tk.Expires)
	assert.False(t, tk.Filled())
}

func TestExpired(t *testing.T) {
	now := time.Now().UTC()
	tk := New("alice", now, 30*time.Second)

	assert.False(t, tk.Expired(now))
	assert.False(t, tk.Expired(now.Add(30*time.Second)))
	assert.True(t, tk.Expired(now.Add(31*time.Second)))
}

func TestTouch(t *testing.T) {
	now := time.Now().UTC()
	tk := New("alice", now, 30*time.Second)

	later := now.Add(10 * time.Second)
	tk.Touch(later, 30*time.Second)
	assert.Equal(t, later, tk.Polled)
	assert.Equal(t, later.Add(30*time.Second), tk.Expires)
	assert.Equal(t, now, tk.Created)
}

func TestFilled(t *testing.T) {
	tk := New("alice", time.Now().UTC(), 30*time.Second)
	assert.False(t, tk.Filled())
	tk.GameUUID = "g-1"
	assert.True(t, tk.Filled())
}
