package mpmcqueue

import (
	"sync"
	"testing"
	"time"
)

func TestSendThenReadDrainsAll(t *testing.T) {
	s, r := New[int]()
	s.Send(1)
	s.Send(2)
	s.Send(3)

	items, status := r.ReadWithTimeout(time.Second)
	if status != ReadOK {
		t.Fatalf("status = %v, want ReadOK", status)
	}
	if len(items) != 3 || items[0] != 1 || items[1] != 2 || items[2] != 3 {
		t.Fatalf("items = %v", items)
	}
}

func TestSendWithNoReceiversIsDisconnected(t *testing.T) {
	s, r := New[string]()
	r.Close()
	res := s.Send("hello")
	if !res.Disconnected || res.Value != "hello" {
		t.Fatalf("expected disconnected send returning the value, got %+v", res)
	}
}

func TestReadWithTimeoutReportsTimeout(t *testing.T) {
	_, r := New[int]()
	_, status := r.ReadWithTimeout(20 * time.Millisecond)
	if status != ReadTimedOut {
		t.Fatalf("status = %v, want ReadTimedOut", status)
	}
}

func TestReadWithTimeoutReportsDisconnectedWhenSendersGone(t *testing.T) {
	s, r := New[int]()
	s.Close()
	_, status := r.ReadWithTimeout(20 * time.Millisecond)
	if status != ReadDisconnected {
		t.Fatalf("status = %v, want ReadDisconnected", status)
	}
}

func TestReadWithTimeoutWakesOnSend(t *testing.T) {
	s, r := New[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Send(99)
	}()
	items, status := r.ReadWithTimeout(time.Second)
	if status != ReadOK || len(items) != 1 || items[0] != 99 {
		t.Fatalf("status=%v items=%v", status, items)
	}
}

func TestMultipleProducersMultipleConsumers(t *testing.T) {
	s, r := New[int]()
	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		sc := s.Clone()
		go func() {
			defer wg.Done()
			defer sc.Close()
			for j := 0; j < perProducer; j++ {
				sc.Send(1)
			}
		}()
	}
	s.Close()

	total := 0
	rc := r.Clone()
	defer rc.Close()
	for {
		items, status := rc.ReadWithTimeout(100 * time.Millisecond)
		total += len(items)
		if status == ReadDisconnected {
			break
		}
	}
	wg.Wait()
	if total != producers*perProducer {
		t.Fatalf("total = %d, want %d", total, producers*perProducer)
	}
}
