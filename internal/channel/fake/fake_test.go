package fake

import (
	"errors"
	"testing"

	"github.com/courtside-app/courtside/internal/channel"
)

type recorder struct {
	statuses []channel.Status
	changes  int
}

func (r *recorder) callbacks() channel.Callbacks {
	return channel.Callbacks{
		OnStatus: func(s channel.Status, _ error) { r.statuses = append(r.statuses, s) },
		OnChange: func() { r.changes++ },
	}
}

func TestProvider_DefaultActivates(t *testing.T) {
	p := New()
	rec := &recorder{}

	h, err := p.Open("sessions", rec.callbacks())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if h.Topic() != "sessions" {
		t.Errorf("Topic() = %q, want %q", h.Topic(), "sessions")
	}

	want := []channel.Status{channel.StatusConnecting, channel.StatusActive}
	if len(rec.statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", rec.statuses, want)
	}
	for i := range want {
		if rec.statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %v, want %v", i, rec.statuses[i], want[i])
		}
	}
}

func TestProvider_Script(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		last    channel.Status
	}{
		{"error", Error, channel.StatusError},
		{"close", Close, channel.StatusClosed},
		{"hang", Hang, channel.StatusConnecting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			p.Script("pool", tt.outcome)
			rec := &recorder{}

			if _, err := p.Open("pool", rec.callbacks()); err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if got := rec.statuses[len(rec.statuses)-1]; got != tt.last {
				t.Errorf("last status = %v, want %v", got, tt.last)
			}

			// Script is consumed; the next open falls back to the default.
			rec2 := &recorder{}
			if _, err := p.Open("pool", rec2.callbacks()); err != nil {
				t.Fatalf("second Open() error = %v", err)
			}
			if got := rec2.statuses[len(rec2.statuses)-1]; got != channel.StatusActive {
				t.Errorf("second open last status = %v, want active", got)
			}
		})
	}
}

func TestProvider_Reject(t *testing.T) {
	p := New()
	p.Script("pool", Reject)

	_, err := p.Open("pool", channel.Callbacks{})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("Open() error = %v, want ErrRejected", err)
	}
	if p.OpenCount("pool") != 1 {
		t.Errorf("OpenCount() = %d, want 1", p.OpenCount("pool"))
	}
	if len(p.Opens()) != 0 {
		t.Errorf("Opens() = %v, want none", p.Opens())
	}
}

func TestProvider_ResolveHanging(t *testing.T) {
	p := New()
	p.SetDefault(Hang)
	rec := &recorder{}

	if _, err := p.Open("chat", rec.callbacks()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !p.Activate("chat") {
		t.Fatal("Activate() = false, want true")
	}
	if p.Activate("chat") {
		t.Error("second Activate() = true, want false")
	}
	if got := p.Emit("chat"); got != 1 {
		t.Errorf("Emit() = %d, want 1", got)
	}
	if rec.changes != 1 {
		t.Errorf("changes = %d, want 1", rec.changes)
	}
	if !p.Drop("chat") {
		t.Error("Drop() = false, want true")
	}
	if got := rec.statuses[len(rec.statuses)-1]; got != channel.StatusClosed {
		t.Errorf("last status = %v, want closed", got)
	}
}

func TestProvider_CloseSilencesHandle(t *testing.T) {
	p := New()
	p.SetDefault(Hang)
	rec := &recorder{}

	h, _ := p.Open("chat", rec.callbacks())
	if err := p.Close(h); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(h); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if p.Activate("chat") {
		t.Error("Activate() on closed handle = true, want false")
	}
	if got := p.CloseCount(h.(*Handle)); got != 2 {
		t.Errorf("CloseCount() = %d, want 2", got)
	}
	if got := p.TotalCloses(); got != 2 {
		t.Errorf("TotalCloses() = %d, want 2", got)
	}
}
