package loadbalancer

import (
	"sync"
	"testing"
)

func TestRoundRobinRotation(t *testing.T) {
	rr := NewRoundRobin([]string{"http://a:8080", "http://b:8080", "http://c:8080"})

	got := []string{rr.Next(), rr.Next(), rr.Next(), rr.Next()}
	want := []string{"http://a:8080", "http://b:8080", "http://c:8080", "http://a:8080"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Next() #%d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRoundRobinEmptyFallback(t *testing.T) {
	rr := NewRoundRobin(nil)
	if got := rr.Next(); got != "http://localhost:8080" {
		t.Errorf("Next() = %q, want default fallback", got)
	}
	if servers := rr.GetServers(); len(servers) != 1 {
		t.Errorf("GetServers() = %v, want single fallback entry", servers)
	}
}

func TestRoundRobinConcurrentDistribution(t *testing.T) {
	servers := []string{"http://a:8080", "http://b:8080"}
	rr := NewRoundRobin(servers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := make(map[string]int)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := rr.Next()
			mu.Lock()
			counts[s]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if counts["http://a:8080"] != 50 || counts["http://b:8080"] != 50 {
		t.Errorf("distribution = %v, want 50/50", counts)
	}
}
