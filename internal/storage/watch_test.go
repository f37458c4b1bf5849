package storage

import (
	"errors"
	"sync"
	"testing"

	"github.com/mmynk/syncdays/internal/models"
)

func TestGroupWatchLatestWins(t *testing.T) {
	w := NewGroupWatch()

	if !w.Send([]*models.Group{{ID: "g1"}}) {
		t.Fatal("Send failed on open watch")
	}
	if !w.Send([]*models.Group{{ID: "g2"}}) {
		t.Fatal("second Send failed on open watch")
	}

	got := <-w.Updates()
	if len(got) != 1 || got[0].ID != "g2" {
		t.Errorf("delivery = %v, want only the latest snapshot", got)
	}
}

func TestGroupWatchSendAfterFinish(t *testing.T) {
	w := NewGroupWatch()
	w.Finish(nil)

	if w.Send(nil) {
		t.Error("Send reported success after Finish")
	}
	if _, ok := <-w.Updates(); ok {
		t.Error("Updates still open after Finish")
	}
}

func TestGroupWatchFinishIdempotent(t *testing.T) {
	w := NewGroupWatch()
	terminal := errors.New("stream broke")

	w.Finish(terminal)
	w.Finish(nil)

	if w.Err() != terminal {
		t.Errorf("Err = %v, want the first terminal error", w.Err())
	}
}

func TestGroupWatchConcurrentSendFinish(t *testing.T) {
	for i := 0; i < 200; i++ {
		w := NewGroupWatch()

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if !w.Send([]*models.Group{{ID: "g"}}) {
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			w.Unsubscribe()
			w.Finish(nil)
		}()
		go func() {
			defer wg.Done()
			for range w.Updates() {
			}
		}()
		wg.Wait()

		if w.Err() != nil {
			t.Fatalf("Err = %v, want nil after clean shutdown", w.Err())
		}
	}
}

func TestDayWatchConcurrentSendFinish(t *testing.T) {
	for i := 0; i < 200; i++ {
		w := NewDayWatch()

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if !w.Send(map[string]*models.DayRecord{"2024-06-01": {}}) {
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			w.Unsubscribe()
			w.Finish(nil)
		}()
		go func() {
			defer wg.Done()
			for range w.Updates() {
			}
		}()
		wg.Wait()
	}
}
