package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestHashIPIsSaltedAndStable(t *testing.T) {
	a := newContactGuard(time.Second, clock.NewMock())
	b := newContactGuard(time.Second, clock.NewMock())

	h := a.hashIP("203.0.113.7")
	if len(h) != 16 {
		t.Fatalf("hash length = %d", len(h))
	}
	if h != a.hashIP("203.0.113.7") {
		t.Error("hash not stable within a process")
	}
	if h == b.hashIP("203.0.113.7") {
		t.Error("different salts produced the same hash")
	}
	if h == a.hashIP("203.0.113.8") {
		t.Error("different IPs produced the same hash")
	}
}

func TestGuardAllow(t *testing.T) {
	mock := clock.NewMock()
	g := newContactGuard(10*time.Second, mock)

	if ok, _ := g.allow("a"); !ok {
		t.Fatal("first request refused")
	}
	if ok, _ := g.allow("b"); !ok {
		t.Fatal("other client refused")
	}
	mock.Add(4 * time.Second)
	ok, wait := g.allow("a")
	if ok || wait != 6*time.Second {
		t.Fatalf("allow = %v, %v; want false, 6s", ok, wait)
	}
	mock.Add(6 * time.Second)
	if ok, _ := g.allow("a"); !ok {
		t.Fatal("refused after interval")
	}

	g.release("a")
	if ok, _ := g.allow("a"); !ok {
		t.Fatal("refused after release")
	}
}

func TestGuardDisabled(t *testing.T) {
	g := newContactGuard(0, clock.NewMock())
	for i := 0; i < 3; i++ {
		if ok, _ := g.allow("a"); !ok {
			t.Fatalf("request %d refused with limit disabled", i)
		}
	}
}

func TestGuardPrunesStaleClients(t *testing.T) {
	mock := clock.NewMock()
	g := newContactGuard(time.Second, mock)
	for i := 0; i <= pruneAbove; i++ {
		g.allow(fmt.Sprintf("client-%d", i))
	}
	mock.Add(2 * time.Second)
	g.allow("fresh")
	if n := len(g.lastSeen); n != 1 {
		t.Errorf("tracked clients = %d, want 1", n)
	}
}
