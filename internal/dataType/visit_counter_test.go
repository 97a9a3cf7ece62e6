package dataType

import (
	"fmt"
	"sync"
	"testing"
)

func TestVisitCounterAddAndQuery(t *testing.T) {
	vc := NewVisitCounter(4, 60)

	vc.Add("1.2.3.4", 1)
	vc.Add("1.2.3.4", 2)
	vc.Add("5.6.7.8", 5)

	if got := vc.Query("1.2.3.4", 60); got != 3 {
		t.Errorf("Query(1.2.3.4) = %d, want 3", got)
	}
	if got := vc.PerMinute("5.6.7.8"); got != 5 {
		t.Errorf("PerMinute(5.6.7.8) = %d, want 5", got)
	}
	if got := vc.Query("9.9.9.9", 60); got != 0 {
		t.Errorf("Query(unknown) = %d, want 0", got)
	}
}

func TestVisitCounterReset(t *testing.T) {
	vc := NewVisitCounter(4, 60)
	vc.Add("1.2.3.4", 10)
	vc.Reset("1.2.3.4")

	if got := vc.Query("1.2.3.4", 60); got != 0 {
		t.Errorf("Query after Reset = %d, want 0", got)
	}
}

func TestVisitCounterConcurrent(t *testing.T) {
	vc := NewVisitCounter(16, 60)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("10.0.0.%d", n%4)
			for j := 0; j < 100; j++ {
				vc.Add(key, 1)
				vc.Query(key, 60)
			}
		}(i)
	}
	wg.Wait()

	var total int64
	for n := 0; n < 4; n++ {
		total += vc.Query(fmt.Sprintf("10.0.0.%d", n), 60)
	}
	if total != 800 {
		t.Errorf("total = %d, want 800", total)
	}
}
