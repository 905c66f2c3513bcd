// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockSet(t *testing.T) {
	clock := Fake(epoch)
	target := time.Date(2020, 1, 15, 8, 30, 0, 0, time.UTC)
	clock.Set(target)
	if got := clock.Now(); !got.Equal(target) {
		t.Fatalf("Now() after Set = %v, want %v", got, target)
	}
}

func TestFakeClockConcurrentAdvance(t *testing.T) {
	clock := Fake(epoch)
	var group sync.WaitGroup
	for range 10 {
		group.Add(1)
		go func() {
			defer group.Done()
			clock.Advance(time.Second)
		}()
	}
	group.Wait()

	want := epoch.Add(10 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestRealClockMovesForward(t *testing.T) {
	clock := Real()
	first := clock.Now()
	second := clock.Now()
	if second.Before(first) {
		t.Fatalf("real clock went backward: %v then %v", first, second)
	}
}
