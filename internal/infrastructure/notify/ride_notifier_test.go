package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/domain/ride"
)

type recordingSender struct {
	msgs []string
	err  error
}

func (s *recordingSender) SendMessage(_ context.Context, text string) error {
	s.msgs = append(s.msgs, text)
	return s.err
}

func TestRideNotifier_Observe(t *testing.T) {
	sender := &recordingSender{}
	n := NewRideNotifier(sender, auth.RoleClient)
	ctx := context.Background()

	requested := &ride.Ride{ID: 3, PickupLocation: "Piața Unirii", DropoffLocation: "Gara Centrală", Price: 18, Status: ride.StatusRequested}
	accepted := *requested
	accepted.Status = ride.StatusAccepted
	accepted.Driver = &auth.Driver{User: auth.User{FirstName: "Ion", LastName: "Popescu"}, CarModel: "Dacia Logan", CarPlate: "B-123-ABC"}

	steps := []struct {
		name string
		in   *ride.Ride
		sent int
	}{
		{"no ride at start", nil, 0},
		{"first sighting", requested, 1},
		{"unchanged", requested, 1},
		{"accepted", &accepted, 2},
		{"ride gone", nil, 3},
		{"still none", nil, 3},
	}
	for _, st := range steps {
		if err := n.Observe(ctx, st.in); err != nil {
			t.Fatalf("%s: unexpected error %v", st.name, err)
		}
		if len(sender.msgs) != st.sent {
			t.Fatalf("%s: expected %d messages, got %d", st.name, st.sent, len(sender.msgs))
		}
	}

	if !strings.Contains(sender.msgs[0], "În așteptare") || !strings.Contains(sender.msgs[0], "18.00 lei") {
		t.Errorf("unexpected first message %q", sender.msgs[0])
	}
	if !strings.Contains(sender.msgs[1], "Ion Popescu") || !strings.Contains(sender.msgs[1], "B-123-ABC") {
		t.Errorf("driver details missing in %q", sender.msgs[1])
	}
	if !strings.Contains(sender.msgs[2], "#3") {
		t.Errorf("unexpected final message %q", sender.msgs[2])
	}
}

func TestRideNotifier_Run(t *testing.T) {
	sender := &recordingSender{err: errors.New("telegram down")}
	n := NewRideNotifier(sender, auth.RoleDriver)

	updates := make(chan *ride.Ride, 2)
	updates <- &ride.Ride{ID: 1, Status: ride.StatusAccepted}
	updates <- &ride.Ride{ID: 1, Status: ride.StatusInProgress}
	close(updates)

	done := make(chan struct{})
	go func() {
		n.Run(context.Background(), updates)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after channel close")
	}
	if len(sender.msgs) != 2 {
		t.Fatalf("send failures must not stop the loop, got %d messages", len(sender.msgs))
	}
	if !strings.Contains(sender.msgs[1], "Condu clientul la destinație.") {
		t.Errorf("expected driver hint, got %q", sender.msgs[1])
	}
}
