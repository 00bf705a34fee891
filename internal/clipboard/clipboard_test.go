package clipboard

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	mu  sync.Mutex
	val string
	err error
}

func (f *fakeBoard) write(s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.val = s
	return nil
}

func (f *fakeBoard) read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, nil
}

func (f *fakeBoard) get() string {
	v, _ := f.read()
	return v
}

func newTestManager(d time.Duration) (*Manager, *fakeBoard) {
	fb := &fakeBoard{}
	m := New(d)
	m.supported = true
	m.write, m.read = fb.write, fb.read
	return m, fb
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("clear never ran")
	}
}

func TestCopy_ClearsAfterDelay(t *testing.T) {
	m, fb := newTestManager(20 * time.Millisecond)

	done, err := m.Copy("Xy9!zz12")
	require.NoError(t, err)
	assert.Equal(t, "Xy9!zz12", fb.get())

	waitDone(t, done)
	assert.Equal(t, "", fb.get())
}

func TestCopy_LeavesForeignContent(t *testing.T) {
	m, fb := newTestManager(20 * time.Millisecond)

	done, err := m.Copy("secret")
	require.NoError(t, err)
	require.NoError(t, fb.write("something the user copied"))

	waitDone(t, done)
	assert.Equal(t, "something the user copied", fb.get())
}

func TestCopy_NewCopyReplacesSchedule(t *testing.T) {
	m, fb := newTestManager(40 * time.Millisecond)

	first, err := m.Copy("one")
	require.NoError(t, err)
	second, err := m.Copy("two")
	require.NoError(t, err)

	// The first schedule is released immediately without clearing "two".
	waitDone(t, first)
	assert.Equal(t, "two", fb.get())

	waitDone(t, second)
	assert.Equal(t, "", fb.get())
}

func TestCopy_DisabledClear(t *testing.T) {
	m, fb := newTestManager(0)

	done, err := m.Copy("keep")
	require.NoError(t, err)
	assert.Nil(t, done)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "keep", fb.get())
}

func TestClearNowAndStop(t *testing.T) {
	m, fb := newTestManager(time.Hour)

	done, err := m.Copy("now")
	require.NoError(t, err)
	m.ClearNow()
	waitDone(t, done)
	assert.Equal(t, "", fb.get())

	done, err = m.Copy("stopped")
	require.NoError(t, err)
	m.Stop()
	waitDone(t, done)
	assert.Equal(t, "stopped", fb.get())
}

func TestCopy_WriteError(t *testing.T) {
	m, fb := newTestManager(time.Second)
	fb.err = errors.New("no display")

	_, err := m.Copy("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
}

func TestCopy_Unsupported(t *testing.T) {
	m, _ := newTestManager(time.Second)
	m.supported = false
	_, err := m.Copy("x")
	assert.ErrorIs(t, err, ErrUnsupported)
}
