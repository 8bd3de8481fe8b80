package debounce

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	slot    string
	payload string
	at      time.Duration
}

type recorder struct {
	mu    sync.Mutex
	start time.Time
	got   []published
}

func newRecorder() *recorder {
	return &recorder{start: time.Now()}
}

func (r *recorder) publish(slot, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, published{slot: slot, payload: payload, at: time.Since(r.start)})
}

func (r *recorder) all() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.got...)
}

func TestUpdater_BurstPublishesLatestOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := newRecorder()
		u := New(250*time.Millisecond, rec.publish)

		u.Submit("videos", "t0")
		time.Sleep(50 * time.Millisecond)
		u.Submit("videos", "t50")

		time.Sleep(249 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, rec.all(), "nothing published before the delay elapses")

		time.Sleep(time.Millisecond)
		synctest.Wait()

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, "t50", got[0].payload)
		assert.Equal(t, 300*time.Millisecond, got[0].at)

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Len(t, rec.all(), 1, "superseded payload never fires")
	})
}

func TestUpdater_SlotsAreIndependent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := newRecorder()
		u := New(100*time.Millisecond, rec.publish)

		u.Submit("videos", "v1")
		u.Submit("streams", "s1")
		u.Submit("videos", "v2")

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		got := rec.all()
		require.Len(t, got, 2)
		payloads := map[string]string{}
		for _, p := range got {
			payloads[p.slot] = p.payload
		}
		assert.Equal(t, map[string]string{"videos": "v2", "streams": "s1"}, payloads)
	})
}

func TestUpdater_ZeroDelayUsesDefault(t *testing.T) {
	u := New(0, func(string, string) {})
	assert.Equal(t, DefaultDelay, u.Delay())
}

func TestUpdater_PendingReflectsLatest(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		u := New(time.Second, func(string, int) {})

		_, ok := u.Pending("a")
		assert.False(t, ok)

		u.Submit("a", 1)
		u.Submit("a", 2)
		v, ok := u.Pending("a")
		assert.True(t, ok)
		assert.Equal(t, 2, v)

		time.Sleep(time.Second)
		synctest.Wait()
		_, ok = u.Pending("a")
		assert.False(t, ok, "handle consumed once published")
	})
}

func TestUpdater_PublishNowCancelsPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := newRecorder()
		u := New(250*time.Millisecond, rec.publish)

		u.Submit("videos", "delayed")
		u.PublishNow("videos", "immediate")

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, "immediate", got[0].payload)
		assert.Equal(t, time.Duration(0), got[0].at)

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Len(t, rec.all(), 1)
	})
}

func TestUpdater_CancelDropsPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := newRecorder()
		u := New(250*time.Millisecond, rec.publish)

		u.Submit("videos", "x")
		u.Cancel("videos")

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Empty(t, rec.all())
	})
}

func TestUpdater_FlushPublishesAllPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := newRecorder()
		u := New(time.Minute, rec.publish)

		u.Submit("a", "1")
		u.Submit("b", "2")
		u.Flush()

		assert.Len(t, rec.all(), 2)

		time.Sleep(2 * time.Minute)
		synctest.Wait()
		assert.Len(t, rec.all(), 2, "flushed slots do not fire again")
	})
}

func TestUpdater_StopIgnoresLaterSubmits(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := newRecorder()
		u := New(10*time.Millisecond, rec.publish)

		u.Submit("a", "before")
		u.Stop()
		u.Submit("a", "after")
		u.PublishNow("a", "now")

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Empty(t, rec.all())
	})
}

// manualClock fires timers only when told to, including timers that were
// already stopped, to simulate a fire racing a superseding Submit.
type manualClock struct {
	fns []func()
}

type manualTimer struct{}

func (manualTimer) Stop() bool { return false }

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.fns = append(c.fns, f)
	return manualTimer{}
}

func TestUpdater_LateFireOfSupersededTimerIsIgnored(t *testing.T) {
	clock := &manualClock{}
	var got []string
	u := New(time.Second, func(_ string, p string) { got = append(got, p) }, WithClock(clock))

	u.Submit("slot", "old")
	u.Submit("slot", "new")
	require.Len(t, clock.fns, 2)

	clock.fns[0]()
	assert.Empty(t, got, "stale timer must not publish")

	clock.fns[1]()
	assert.Equal(t, []string{"new"}, got)
}

func TestUpdater_PublishNowDuringFireWins(t *testing.T) {
	clock := &manualClock{}
	entered := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var got []string
	u := New(time.Second, func(_ string, p string) {
		if p == "old" {
			close(entered)
			<-release
		}
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	}, WithClock(clock))

	u.Submit("uri", "old")
	require.Len(t, clock.fns, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		clock.fns[0]()
	}()
	<-entered

	go func() {
		defer wg.Done()
		u.PublishNow("uri", "new")
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, got)
	assert.Equal(t, "new", got[len(got)-1], "the immediate payload must land last")
}

func TestUpdater_FlushAfterPublishNowDropsNothingNewer(t *testing.T) {
	clock := &manualClock{}
	var got []string
	u := New(time.Second, func(_ string, p string) { got = append(got, p) }, WithClock(clock))

	u.Submit("uri", "progress")
	u.PublishNow("uri", "seek")
	u.Flush()
	clock.fns[0]()

	assert.Equal(t, []string{"seek"}, got)

	u.Submit("uri", "later")
	u.Flush()
	assert.Equal(t, []string{"seek", "later"}, got)
}
