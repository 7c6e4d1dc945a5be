package progress

import "testing"

func TestReportDeliversToSubscribers(t *testing.T) {
	r := NewReporter()
	id, ch := r.Subscribe(1)
	defer r.Unsubscribe(id)

	r.Report(Started("corr-1", "starting", 3))

	select {
	case update := <-ch:
		if update.Phase != PhaseStarted || update.Total != 3 {
			t.Errorf("unexpected update: %+v", update)
		}
	default:
		t.Fatal("expected an update to be delivered")
	}
}

func TestReportIsNonBlockingWhenSubscriberFull(t *testing.T) {
	r := NewReporter()
	_, _ = r.Subscribe(0) // unbuffered, nothing draining it

	done := make(chan struct{})
	go func() {
		r.Report(Completed("corr-2", "done"))
		close(done)
	}()
	<-done // must not hang
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	r := NewReporter()
	id, ch := r.Subscribe(1)
	r.Unsubscribe(id)

	r.Report(InProgress("corr-3", "tick", 1))

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
}
