package http

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/akudrin/livecast-server/internal/lifecycle"
)

type sseFrame struct {
	event string
	data  string
}

// sseListen connects to /events and feeds parsed frames to a channel.
func sseListen(t *testing.T, ctx context.Context, env *testEnv) <-chan sseFrame {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.ts.URL+"/events", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("connect sse: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type: %s", ct)
	}

	frames := make(chan sseFrame, 16)
	go func() {
		defer close(frames)
		scanner := bufio.NewScanner(resp.Body)
		var frame sseFrame
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"), strings.HasPrefix(line, "event: "):
				frame.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				frame.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			case line == "":
				if frame.event != "" {
					frames <- frame
				}
				frame = sseFrame{}
			}
		}
	}()
	return frames
}

func mustFrame(t *testing.T, frames <-chan sseFrame) sseFrame {
	t.Helper()
	select {
	case frame, ok := <-frames:
		if !ok {
			t.Fatal("sse stream closed unexpectedly")
		}
		return frame
	case <-time.After(3 * time.Second):
		t.Fatal("no sse frame received")
	}
	return sseFrame{}
}

func TestSSELateJoinerGetsSnapshotThenLive(t *testing.T) {
	env := startTestServer(t)

	// B1 goes live before anyone is listening.
	env.publisher.Started("B1", lifecycle.Payload{Title: "Morning Show"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	frames := sseListen(t, ctx, env)

	ack := mustFrame(t, frames)
	if ack.event != "connected" {
		t.Fatalf("expected connected ack first, got %+v", ack)
	}

	// Snapshot replay: the late joiner sees B1 as already live.
	snapshot := mustFrame(t, frames)
	if snapshot.event != string(lifecycle.EventStarted) {
		t.Fatalf("expected broadcast-started replay, got %+v", snapshot)
	}
	if !strings.Contains(snapshot.data, `"broadcastId":"B1"`) || !strings.Contains(snapshot.data, `"status":"LIVE"`) {
		t.Fatalf("unexpected snapshot payload: %s", snapshot.data)
	}

	// Live transition after connect.
	env.publisher.Ended("B1")
	ended := mustFrame(t, frames)
	if ended.event != string(lifecycle.EventEnded) {
		t.Fatalf("expected broadcast-ended, got %+v", ended)
	}
	if !strings.Contains(ended.data, `"status":"ENDED"`) {
		t.Fatalf("unexpected terminal payload: %s", ended.data)
	}
}

func TestSSEConnectWithNoActiveBroadcasts(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	frames := sseListen(t, ctx, env)

	ack := mustFrame(t, frames)
	if ack.event != "connected" {
		t.Fatalf("expected connected ack, got %+v", ack)
	}

	env.publisher.Started("B2", lifecycle.Payload{Title: "Pop-up Session"})
	started := mustFrame(t, frames)
	if started.event != string(lifecycle.EventStarted) || !strings.Contains(started.data, `"broadcastId":"B2"`) {
		t.Fatalf("unexpected live event: %+v", started)
	}
}
