package faqwidget

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestWithUpdateCallback_InvokedOnMount(t *testing.T) {
	var mu sync.Mutex
	var phases []Phase

	w := newTestWidget(t, WithUpdateCallback(func(s Snapshot) {
		mu.Lock()
		phases = append(phases, s.Phase)
		mu.Unlock()
	}))

	if err := w.Mount(context.Background(), Attributes{InlineData: inlineItems(2)}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(phases) == 0 {
		t.Fatal("callback should have been invoked")
	}
	if last := phases[len(phases)-1]; last != PhaseResolved {
		t.Errorf("last phase = %q, want resolved", last)
	}
}

func TestWithUpdateCallback_ReceivesCorrectFields(t *testing.T) {
	var got Snapshot
	w := newTestWidget(t, WithWidgetName("help"), WithUpdateCallback(func(s Snapshot) {
		got = s
	}))

	if err := w.Mount(context.Background(), Attributes{InlineData: inlineItems(3)}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	if got.Name != "help" {
		t.Errorf("Name = %q, want help", got.Name)
	}
	if got.Generation != 1 {
		t.Errorf("Generation = %d, want 1", got.Generation)
	}
	if len(got.FAQs) != 3 {
		t.Errorf("len(FAQs) = %d, want 3", len(got.FAQs))
	}
	if got.OpenIndex != NoIndex {
		t.Errorf("OpenIndex = %d, want NoIndex", got.OpenIndex)
	}
}

func TestWithUpdateCallback_PanicRecovery(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	var normalCalled bool
	w := newTestWidget(t,
		WithWidgetLogger(logger),
		WithUpdateCallback(func(Snapshot) { panic("intentional test panic") }),
		WithUpdateCallback(func(Snapshot) { normalCalled = true }),
	)

	// should not panic
	if err := w.Mount(context.Background(), Attributes{InlineData: inlineItems(1)}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	if !normalCalled {
		t.Error("subsequent callbacks should still run after panic")
	}
	if !strings.Contains(logBuf.String(), "update callback panicked") {
		t.Errorf("panic should have been logged, got %q", logBuf.String())
	}
	if w.Snapshot().Phase != PhaseResolved {
		t.Errorf("Phase = %q, want resolved", w.Snapshot().Phase)
	}
}

func TestWithUpdateCallback_NoSharedReferences(t *testing.T) {
	var captured []Snapshot
	w := newTestWidget(t, WithUpdateCallback(func(s Snapshot) {
		if len(s.FAQs) > 0 {
			s.FAQs[0].Question = "mutated"
		}
		captured = append(captured, s)
	}))

	if err := w.Mount(context.Background(), Attributes{InlineData: inlineItems(1)}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	if got := w.Snapshot().FAQs[0].Question; got != "Question 0" {
		t.Errorf("widget FAQs mutated through callback: %q", got)
	}
	if len(captured) == 0 {
		t.Fatal("callback not invoked")
	}
}

func TestWithUpdateCallback_ExecutionOrder(t *testing.T) {
	var order []int
	w := newTestWidget(t,
		WithUpdateCallback(func(Snapshot) { order = append(order, 1) }),
		WithUpdateCallback(func(Snapshot) { order = append(order, 2) }),
		WithUpdateCallback(func(Snapshot) { order = append(order, 3) }),
	)

	if err := w.Mount(context.Background(), Attributes{InlineData: inlineItems(1)}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	w.Toggle(0)

	if len(order) < 6 || len(order)%3 != 0 {
		t.Fatalf("order = %v, want whole rounds of 3", order)
	}
	for i, v := range order {
		if v != i%3+1 {
			t.Errorf("order[%d] = %d, want %d", i, v, i%3+1)
		}
	}
}
