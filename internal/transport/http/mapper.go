package http

import (
	"encoding/json"

	"github.com/akudrin/livecast-server/internal/chat"
	"github.com/akudrin/livecast-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*chat.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.RoomID == "" {
			return nil, &proto.Error{Code: chat.ErrCodeInvalidInput, Msg: "roomId is required"}, nil
		}
		return &chat.Command{
			Kind: chat.CommandJoinRoom,
			Room: join.RoomID,
		}, nil, nil
	case proto.InboundTypeLeaveRoom:
		var leave proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		if leave.RoomID == "" {
			return nil, &proto.Error{Code: chat.ErrCodeInvalidInput, Msg: "roomId is required"}, nil
		}
		return &chat.Command{
			Kind: chat.CommandLeaveRoom,
			Room: leave.RoomID,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var send proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &send); err != nil {
			return nil, nil, err
		}
		if send.RoomID == "" {
			return nil, &proto.Error{Code: chat.ErrCodeInvalidInput, Msg: "roomId is required"}, nil
		}
		return &chat.Command{
			Kind:      chat.CommandSendMessage,
			Room:      send.RoomID,
			Content:   send.Content,
			MsgKind:   send.Kind,
			ReplyToID: send.ReplyToID,
		}, nil, nil
	case proto.InboundTypeToggleLike:
		var like proto.ToggleLikeData
		if err := json.Unmarshal(inbound.Data, &like); err != nil {
			return nil, nil, err
		}
		if like.MessageID == "" {
			return nil, &proto.Error{Code: chat.ErrCodeInvalidInput, Msg: "messageId is required"}, nil
		}
		return &chat.Command{
			Kind:      chat.CommandToggleLike,
			MessageID: like.MessageID,
		}, nil, nil
	case proto.InboundTypeModerate:
		var mod proto.ModerateData
		if err := json.Unmarshal(inbound.Data, &mod); err != nil {
			return nil, nil, err
		}
		if mod.MessageID == "" || mod.Action == "" {
			return nil, &proto.Error{Code: chat.ErrCodeInvalidInput, Msg: "messageId and action are required"}, nil
		}
		return &chat.Command{
			Kind:      chat.CommandModerate,
			MessageID: mod.MessageID,
			Action:    chat.ModerationAction(mod.Action),
		}, nil, nil
	default:
		return nil, &proto.Error{Code: chat.ErrCodeInvalidInput, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *chat.Event) proto.Outbound {
	switch event.Kind {
	case chat.EventHistory:
		messages := make([]proto.WireMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, wireMessage(msg))
		}
		return proto.Outbound{
			Type: proto.OutboundTypeHistory,
			Data: proto.HistoryData{RoomID: event.Room, Messages: messages},
		}
	case chat.EventMessageCreated:
		return proto.Outbound{
			Type: proto.OutboundTypeMessageCreated,
			Data: wireMessage(event.Message),
		}
	case chat.EventMessageLiked:
		return proto.Outbound{
			Type: proto.OutboundTypeMessageLiked,
			Data: proto.LikedData{
				MessageID: event.Message.ID,
				LikeCount: event.Message.LikeCount,
				LikedBy:   likedBy(event.Message),
			},
		}
	case chat.EventMessageModerated:
		return proto.Outbound{
			Type: proto.OutboundTypeMessageModerated,
			Data: proto.ModeratedData{
				MessageID:   event.Message.ID,
				Pinned:      event.Message.Pinned,
				Highlighted: event.Message.Highlighted,
				Moderated:   event.Message.Moderated,
			},
		}
	case chat.EventOnlineCount:
		return proto.Outbound{
			Type: proto.OutboundTypeOnlineCount,
			Data: proto.OnlineCountData{Count: event.OnlineCount},
		}
	case chat.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}

func wireMessage(m *chat.Message) proto.WireMessage {
	return proto.WireMessage{
		ID:           m.ID,
		RoomID:       m.RoomID,
		Content:      m.Content,
		AuthorID:     m.AuthorID,
		AuthorName:   m.AuthorName,
		AuthorAvatar: m.AuthorAvatar,
		Kind:         string(m.Kind),
		ReplyToID:    m.ReplyToID,
		CreatedAt:    m.CreatedAt.Unix(),
		LikeCount:    m.LikeCount,
		LikedBy:      likedBy(m),
		Pinned:       m.Pinned,
		Highlighted:  m.Highlighted,
		Moderated:    m.Moderated,
	}
}

// likedBy never returns nil so the wire shape is always a JSON array.
func likedBy(m *chat.Message) []string {
	if m.LikedBy == nil {
		return []string{}
	}
	return m.LikedBy
}
