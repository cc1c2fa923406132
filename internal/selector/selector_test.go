package selector

import (
	"sync"
	"testing"

	"modelgate/config"
)

func testGroup(strategy string, names ...string) *config.ModelGroup {
	group := &config.ModelGroup{
		ID:       "g-1",
		Name:     "my-group",
		Enabled:  true,
		Strategy: strategy,
	}
	for _, n := range names {
		group.Models = append(group.Models, config.ModelEndpoint{
			ID:      n,
			Name:    n,
			BaseURL: "https://example.com/" + n,
		})
	}
	return group
}

func TestRoundRobinOrder(t *testing.T) {
	s := New()
	group := testGroup(StrategyRoundRobin, "a", "b", "c")

	want := []string{"a", "b", "c", "a", "b"}
	for i, expected := range want {
		if got := s.Pick(group).Name; got != expected {
			t.Errorf("pick %d = %q, want %q", i, got, expected)
		}
	}
}

func TestRoundRobinIsolatedPerGroup(t *testing.T) {
	s := New()
	g1 := testGroup(StrategyRoundRobin, "a", "b")
	g2 := testGroup(StrategyRoundRobin, "x", "y")
	g2.ID = "g-2"

	s.Pick(g1)
	if got := s.Pick(g2).Name; got != "x" {
		t.Errorf("second group should start at its own cursor, got %q", got)
	}
}

func TestRoundRobinConcurrent(t *testing.T) {
	s := New()
	group := testGroup(StrategyRoundRobin, "a", "b", "c")

	const perMember = 100
	total := perMember * len(group.Models)

	var mu sync.Mutex
	counts := make(map[string]int)

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := s.Pick(group).Name
			mu.Lock()
			counts[name]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, m := range group.Models {
		if counts[m.Name] != perMember {
			t.Errorf("endpoint %q picked %d times, want exactly %d", m.Name, counts[m.Name], perMember)
		}
	}
}

func TestRoundRobinSurvivesGroupShrink(t *testing.T) {
	s := New()
	big := testGroup(StrategyRoundRobin, "a", "b", "c")

	// Advance the cursor past the size of the shrunken group.
	s.Pick(big)
	s.Pick(big)

	small := testGroup(StrategyRoundRobin, "a")
	if got := s.Pick(small).Name; got != "a" {
		t.Errorf("pick after shrink = %q", got)
	}
}

func TestSequentialAlwaysFirst(t *testing.T) {
	s := New()
	group := testGroup(StrategySequential, "a", "b", "c")

	for i := 0; i < 5; i++ {
		if got := s.Pick(group).Name; got != "a" {
			t.Errorf("pick %d = %q, want first member", i, got)
		}
	}
}

func TestUnknownStrategyBehavesLikeSequential(t *testing.T) {
	s := New()
	group := testGroup("weighted", "a", "b")

	for i := 0; i < 3; i++ {
		if got := s.Pick(group).Name; got != "a" {
			t.Errorf("pick %d = %q, want first member", i, got)
		}
	}
}

func TestRandomStaysInBounds(t *testing.T) {
	s := New()
	group := testGroup(StrategyRandom, "a", "b", "c")

	valid := map[string]bool{"a": true, "b": true, "c": true}
	for i := 0; i < 100; i++ {
		if got := s.Pick(group).Name; !valid[got] {
			t.Fatalf("pick returned unknown endpoint %q", got)
		}
	}
}
