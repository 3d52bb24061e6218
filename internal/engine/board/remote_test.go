package board

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// bridgeServer fakes the browser-driver HTTP bridge with a scripted handler.
func bridgeServer(t *testing.T, handle func(bridgeCommand) bridgeReply) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd bridgeCommand
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("bad command envelope: %v", err)
		}
		if err := json.NewEncoder(w).Encode(handle(cmd)); err != nil {
			t.Errorf("encode reply: %v", err)
		}
	}))
}

func TestRemoteSessionRoundTrip(t *testing.T) {
	srv := bridgeServer(t, func(cmd bridgeCommand) bridgeReply {
		switch cmd.Action {
		case "open":
			if cmd.Value != "https://example.com/jobs/view/1" {
				t.Errorf("open value = %q", cmd.Value)
			}
			return bridgeReply{OK: true, Value: "p1"}
		case "url":
			if cmd.PageID != "p1" {
				t.Errorf("url page id = %q", cmd.PageID)
			}
			return bridgeReply{OK: true, Value: "https://example.com/jobs/view/1"}
		case "sections":
			return bridgeReply{OK: true, JSON: json.RawMessage(
				`[{"index":3,"label":"Visa sponsorship?","radio_options":["Yes","No"]}]`)}
		case "select_radio":
			if cmd.Target != 3 || cmd.Value != "No" {
				t.Errorf("select_radio target=%d value=%q", cmd.Target, cmd.Value)
			}
			return bridgeReply{OK: true}
		}
		return bridgeReply{OK: false, Error: "unknown action " + cmd.Action}
	})
	defer srv.Close()

	s := NewRemoteSession(srv.URL)
	page, err := s.OpenJob(context.Background(), &Job{Link: "https://example.com/jobs/view/1"})
	if err != nil {
		t.Fatal(err)
	}
	if got := page.URL(); got != "https://example.com/jobs/view/1" {
		t.Errorf("URL() = %q", got)
	}

	form, err := page.Form()
	if err != nil {
		t.Fatal(err)
	}
	sections, err := form.Sections()
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	sec := sections[0]
	if sec.Label() != "Visa sponsorship?" {
		t.Errorf("label = %q", sec.Label())
	}
	if got := sec.RadioOptions(); len(got) != 2 || got[0] != "Yes" {
		t.Errorf("radio options = %v", got)
	}
	if err := sec.SelectRadio(context.Background(), "No"); err != nil {
		t.Errorf("select radio: %v", err)
	}
}

func TestRemoteSessionErrorReply(t *testing.T) {
	srv := bridgeServer(t, func(bridgeCommand) bridgeReply {
		return bridgeReply{OK: false, Error: "no apply button"}
	})
	defer srv.Close()

	s := NewRemoteSession(srv.URL)
	if _, err := s.OpenJob(context.Background(), &Job{Link: "x"}); err == nil {
		t.Error("expected error from NOK reply")
	}
}

func TestRemotePageStopsOnJobCancellation(t *testing.T) {
	var hits atomic.Int32
	srv := bridgeServer(t, func(bridgeCommand) bridgeReply {
		hits.Add(1)
		return bridgeReply{OK: true, Value: "p1"}
	})
	defer srv.Close()

	s := NewRemoteSession(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	page, err := s.OpenJob(ctx, &Job{Link: "x"})
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	// Reads carry no context parameter but are scoped to the job: after
	// cancellation they degrade without touching the bridge again.
	if got := page.URL(); got != "" {
		t.Errorf("URL() after cancel = %q, want empty", got)
	}
	form, err := page.Form()
	if err != nil {
		t.Fatal(err)
	}
	if err := form.CheckErrors(); !errors.Is(err, context.Canceled) {
		t.Errorf("CheckErrors() after cancel = %v, want context.Canceled", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("bridge received %d commands after cancellation, want only the open", got)
	}
}
