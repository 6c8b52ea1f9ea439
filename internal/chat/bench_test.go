package chat

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(newTestOrchestrator(0), nopLogger())
	go hub.Run(ctx)

	sender := NewClient("sender", userIdentity("u-sender", "sender"))
	hub.RegisterClient(sender)
	sender.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench"}
	go func() {
		for range sender.Events {
		}
	}()

	// Drained recipients: they only exist to make the fan-out wide.
	for i := 0; i < recipients-1; i++ {
		c := NewClient(fmt.Sprintf("c%d", i), userIdentity(fmt.Sprintf("u%d", i), "client"))
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench"}
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}

	// The measured recipient joins last so only message events reach
	// it once the loop starts.
	target := NewClient("target", userIdentity("u-target", "target"))
	hub.RegisterClient(target)
	target.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench"}
	for ev := range target.Events {
		if ev.Kind == EventHistory {
			break
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{Kind: CommandSendMessage, Room: "bench", Content: "payload"}
		for ev := range target.Events {
			if ev.Kind == EventMessageCreated {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
