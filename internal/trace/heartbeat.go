package trace

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// StartHeartbeat emits a heartbeat every interval until the returned stop
// function is called. When t is a Recorder the heartbeat names the
// documents still compiling, so a stuck build shows which file hangs.
// It returns a no-op stop when tracing is off or interval is not positive.
func StartHeartbeat(t Tracer, interval time.Duration) (stop func()) {
	if t == nil || t.Level() == LevelOff || interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for n := 1; ; n++ {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				t.Emit(Event{
					Time:   now,
					Kind:   KindHeartbeat,
					Scope:  ScopeDriver,
					Name:   "heartbeat",
					Detail: heartbeatDetail(t, n),
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

func heartbeatDetail(t Tracer, n int) string {
	r, ok := t.(*Recorder)
	if !ok {
		return fmt.Sprintf("#%d", n)
	}
	files := r.InFlight()
	if len(files) == 0 {
		return fmt.Sprintf("#%d idle", n)
	}
	const shown = 3
	list := files
	if len(list) > shown {
		list = list[:shown]
	}
	detail := fmt.Sprintf("#%d compiling %s", n, strings.Join(list, ", "))
	if extra := len(files) - len(list); extra > 0 {
		detail += fmt.Sprintf(" and %d more", extra)
	}
	return detail
}
