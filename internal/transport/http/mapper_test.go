package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/akudrin/livecast-server/internal/chat"
	"github.com/akudrin/livecast-server/internal/proto"
)

func inbound(t *testing.T, typ string, data any) proto.Inbound {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal inbound: %v", err)
	}
	return proto.Inbound{Type: typ, Data: raw}
}

func TestInboundToCommand(t *testing.T) {
	cases := []struct {
		name    string
		in      proto.Inbound
		want    chat.CommandKind
		wantErr string // expected proto error code, empty means command
	}{
		{
			name: "join room",
			in:   inbound(t, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: "B1"}),
			want: chat.CommandJoinRoom,
		},
		{
			name:    "join without room",
			in:      inbound(t, proto.InboundTypeJoinRoom, proto.JoinRoomData{}),
			wantErr: chat.ErrCodeInvalidInput,
		},
		{
			name: "leave room",
			in:   inbound(t, proto.InboundTypeLeaveRoom, proto.JoinRoomData{RoomID: "B1"}),
			want: chat.CommandLeaveRoom,
		},
		{
			name: "send message",
			in:   inbound(t, proto.InboundTypeSendMessage, proto.SendMessageData{RoomID: "B1", Content: "hi"}),
			want: chat.CommandSendMessage,
		},
		{
			name:    "send without room",
			in:      inbound(t, proto.InboundTypeSendMessage, proto.SendMessageData{Content: "hi"}),
			wantErr: chat.ErrCodeInvalidInput,
		},
		{
			name: "toggle like",
			in:   inbound(t, proto.InboundTypeToggleLike, proto.ToggleLikeData{MessageID: "m1"}),
			want: chat.CommandToggleLike,
		},
		{
			name: "moderate",
			in:   inbound(t, proto.InboundTypeModerate, proto.ModerateData{MessageID: "m1", Action: "pin"}),
			want: chat.CommandModerate,
		},
		{
			name:    "moderate without action",
			in:      inbound(t, proto.InboundTypeModerate, proto.ModerateData{MessageID: "m1"}),
			wantErr: chat.ErrCodeInvalidInput,
		},
		{
			name:    "unknown type",
			in:      inbound(t, "selfdestruct", struct{}{}),
			wantErr: chat.ErrCodeInvalidInput,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, protoErr, err := inboundToCommand(tc.in)
			if err != nil {
				t.Fatalf("unexpected mapping error: %v", err)
			}
			if tc.wantErr != "" {
				if protoErr == nil || protoErr.Code != tc.wantErr {
					t.Fatalf("expected proto error %s, got %+v", tc.wantErr, protoErr)
				}
				return
			}
			if protoErr != nil {
				t.Fatalf("unexpected proto error: %+v", protoErr)
			}
			if cmd == nil || cmd.Kind != tc.want {
				t.Fatalf("expected command kind %v, got %+v", tc.want, cmd)
			}
		})
	}
}

func TestOutboundFromEventShapes(t *testing.T) {
	msg := &chat.Message{
		ID:         "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		RoomID:     "B1",
		Content:    "hi",
		AuthorID:   "u1",
		AuthorName: "alice",
		Kind:       chat.KindUser,
		CreatedAt:  time.Unix(1700000000, 0).UTC(),
		LikeCount:  2,
		LikedBy:    []string{"u2", "u3"},
		Pinned:     true,
	}

	created := outboundFromEvent(&chat.Event{Kind: chat.EventMessageCreated, Message: msg})
	if created.Type != proto.OutboundTypeMessageCreated {
		t.Fatalf("unexpected type: %s", created.Type)
	}
	wire, ok := created.Data.(proto.WireMessage)
	if !ok {
		t.Fatalf("unexpected data type: %T", created.Data)
	}
	if wire.ID != msg.ID || wire.CreatedAt != 1700000000 || !wire.Pinned {
		t.Fatalf("unexpected wire message: %+v", wire)
	}

	liked := outboundFromEvent(&chat.Event{Kind: chat.EventMessageLiked, Message: msg})
	likedData, ok := liked.Data.(proto.LikedData)
	if !ok {
		t.Fatalf("unexpected data type: %T", liked.Data)
	}
	if likedData.MessageID != msg.ID || likedData.LikeCount != 2 || len(likedData.LikedBy) != 2 {
		t.Fatalf("unexpected liked data: %+v", likedData)
	}

	moderated := outboundFromEvent(&chat.Event{Kind: chat.EventMessageModerated, Message: msg})
	modData, ok := moderated.Data.(proto.ModeratedData)
	if !ok {
		t.Fatalf("unexpected data type: %T", moderated.Data)
	}
	if !modData.Pinned || modData.Moderated {
		t.Fatalf("unexpected moderated data: %+v", modData)
	}

	// A liked set must always serialize as an array, even when empty.
	empty := outboundFromEvent(&chat.Event{Kind: chat.EventMessageLiked, Message: &chat.Message{ID: "m2"}})
	emptyData := empty.Data.(proto.LikedData)
	if emptyData.LikedBy == nil {
		t.Fatal("nil likedBy leaked to the wire")
	}

	errEv := outboundFromEvent(&chat.Event{Kind: chat.EventError, Error: &chat.CoreError{Code: chat.ErrCodeForbidden, Message: "no"}})
	if errEv.Type != proto.OutboundTypeError || errEv.Error == nil || errEv.Error.Code != chat.ErrCodeForbidden {
		t.Fatalf("unexpected error outbound: %+v", errEv)
	}
}
