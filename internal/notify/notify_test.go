package notify

import (
	"testing"
)

func TestNotifier_Subscribe(t *testing.T) {
	n := New[int]()

	var got []int
	n.Subscribe(func(v int) { got = append(got, v) })
	n.Subscribe(func(v int) { got = append(got, v*10) })

	n.Notify(1)
	n.Notify(2)

	want := []int{1, 10, 2, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNotifier_ZeroValue(t *testing.T) {
	var n Notifier[string]
	called := false
	n.Subscribe(func(string) { called = true })
	n.Notify("x")
	if !called {
		t.Error("zero-value notifier should deliver")
	}
}

func TestSubscription_Unsubscribe(t *testing.T) {
	n := New[int]()
	count := 0
	sub := n.Subscribe(func(int) { count++ })

	n.Notify(1)
	sub.Unsubscribe()
	sub.Unsubscribe()
	n.Notify(2)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if n.Len() != 0 {
		t.Errorf("Len() = %d, want 0", n.Len())
	}

	var nilSub *Subscription[int]
	nilSub.Unsubscribe()
}

func TestNotifier_UnsubscribeDuringNotify(t *testing.T) {
	n := New[int]()
	count := 0
	var sub *Subscription[int]
	sub = n.Subscribe(func(int) {
		count++
		sub.Unsubscribe()
	})

	n.Notify(1)
	n.Notify(2)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestNotifier_Close(t *testing.T) {
	n := New[int]()
	count := 0
	n.Subscribe(func(int) { count++ })

	n.Close()
	n.Close()
	n.Notify(1)
	n.Subscribe(func(int) { count++ })
	n.Notify(2)

	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
