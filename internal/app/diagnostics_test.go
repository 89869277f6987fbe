package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestDiagnostics_LastAndBound(t *testing.T) {
	d := NewDiagnostics(3)

	if d.Last() != nil {
		t.Fatalf("Last() = %v on empty log", d.Last())
	}

	for i := 0; i < 5; i++ {
		d.Record(fmt.Errorf("err-%d", i))
	}
	d.Record(nil)

	if got := d.Last().Error(); got != "err-4" {
		t.Errorf("Last() = %s, want err-4", got)
	}
	all := d.All()
	if len(all) != 3 {
		t.Fatalf("All() has %d entries, want 3", len(all))
	}
	for i, want := range []string{"err-2", "err-3", "err-4"} {
		if all[i].Error() != want {
			t.Errorf("All()[%d] = %s, want %s", i, all[i], want)
		}
	}
	if d.Total() != 5 {
		t.Errorf("Total() = %d, want 5", d.Total())
	}
}

func TestDiagnostics_DefaultLimit(t *testing.T) {
	d := NewDiagnostics(0)
	for i := 0; i < DefaultExceptionLimit+10; i++ {
		d.Record(errors.New("x"))
	}
	if n := len(d.All()); n != DefaultExceptionLimit {
		t.Errorf("retained %d entries, want %d", n, DefaultExceptionLimit)
	}
}

func TestDiagnostics_ConcurrentReadWrite(t *testing.T) {
	d := NewDiagnostics(10)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.Record(errors.New("boom"))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = d.Last()
				_ = d.All()
			}
		}()
	}
	wg.Wait()

	if d.Total() != 400 {
		t.Errorf("Total() = %d, want 400", d.Total())
	}
}

func TestPendingQueue_AppendSwap(t *testing.T) {
	q := newPendingQueue()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q.Append(recordFor(j))
			}
		}()
	}
	wg.Wait()

	if q.Len() != 400 {
		t.Fatalf("Len() = %d, want 400", q.Len())
	}
	if got := len(q.Swap()); got != 400 {
		t.Errorf("Swap() returned %d records, want 400", got)
	}
	if q.Len() != 0 || len(q.Swap()) != 0 {
		t.Error("queue not empty after swap")
	}
}
