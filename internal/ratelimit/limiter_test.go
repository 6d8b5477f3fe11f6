package ratelimit

import (
	"testing"
	"time"
)

func TestKeyedLimitsPerKey(t *testing.T) {
	l := NewKeyed(1, 2, time.Minute)
	now := time.Now()

	if !l.Allow("a", now) || !l.Allow("a", now) {
		t.Fatal("burst should admit the first two requests")
	}
	if l.Allow("a", now) {
		t.Fatal("third immediate request should be limited")
	}
	if !l.Allow("b", now) {
		t.Fatal("another key must have its own bucket")
	}
	if !l.Allow("a", now.Add(time.Second)) {
		t.Fatal("bucket should refill after a second at 1 rps")
	}
}

func TestKeyedNilAndEmptyKeyAllow(t *testing.T) {
	var l *Keyed
	if !l.Allow("a", time.Now()) {
		t.Fatal("nil limiter must allow everything")
	}

	l = NewKeyed(1, 1, time.Minute)
	now := time.Now()
	if !l.Allow("", now) || !l.Allow("  ", now) {
		t.Fatal("empty keys are not limited")
	}
}

func TestKeyedInvalidArgs(t *testing.T) {
	if NewKeyed(0, 1, time.Minute) != nil {
		t.Fatal("zero rps is invalid")
	}
	if NewKeyed(1, 0, time.Minute) != nil {
		t.Fatal("zero burst is invalid")
	}
}
