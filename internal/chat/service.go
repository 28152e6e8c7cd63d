// Package chat serves the three room flavors: named domain rooms, the
// per-SOS-request room, and the 1:1 social room created by an accepted
// contact request. Message logs are append-only; only read flags mutate.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"wanderlink/backend/internal/config"
	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/events"
	"wanderlink/backend/internal/logger"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/notify"
	"wanderlink/backend/internal/texts"
)

var (
	ErrInvalidDomain   = errors.New("chat: unknown room domain")
	ErrRoomNotFound    = errors.New("chat: room not found")
	ErrNotParticipant  = errors.New("chat: sender is not a participant")
	ErrRequestResolved = errors.New("chat: request is resolved")
)

// RoomsRecordName is the store key of one domain's room map.
func RoomsRecordName(domain models.RoomDomain) string {
	return "chatRooms_" + string(domain)
}

// SOSRoomRecordName is the store key of one request's chat log.
func SOSRoomRecordName(requestID string) string { return "chat_" + requestID }

// DirectRecordName is the store key of a social pair's message log.
func DirectRecordName(pairID string) string { return "messages_" + pairID }

type Service struct {
	store  docstore.Store
	notify *notify.Service
	events events.Publisher
}

func NewService(store docstore.Store, n *notify.Service, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{store: store, notify: n, events: pub}
}

func newMessage(sender models.User, text string, kind models.MessageKind) models.Message {
	return models.Message{
		ID:           "msg_" + uuid.NewString(),
		SenderID:     sender.ID,
		SenderPseudo: sender.Pseudo,
		Message:      text,
		Timestamp:    time.Now().UTC(),
		Kind:         kind,
	}
}

// defaultRooms seeds each domain map on first read. The expert domain
// starts empty; its rooms are opened per consultation.
func defaultRooms(domain models.RoomDomain) map[string]models.ChatRoom {
	now := time.Now().UTC()
	switch domain {
	case models.DomainGeneral:
		return map[string]models.ChatRoom{
			"general": {ID: "general", Name: texts.RoomNameGeneral, Participants: []string{}, Messages: []models.Message{}, LastActivity: now, IsActive: true},
			"sos":     {ID: "sos", Name: texts.RoomNameSOS, Participants: []string{}, Messages: []models.Message{}, LastActivity: now, IsActive: true},
			"travel":  {ID: "travel", Name: texts.RoomNameTravel, Participants: []string{}, Messages: []models.Message{}, LastActivity: now, IsActive: true},
		}
	case models.DomainSOS:
		welcome := newMessage(models.SystemUser, texts.SOSRoomWelcome, models.MessageSystem)
		return map[string]models.ChatRoom{
			"sos": {ID: "sos", Name: texts.RoomNameSOS, Participants: []string{}, Messages: []models.Message{welcome}, LastActivity: now, IsActive: true},
		}
	default:
		return map[string]models.ChatRoom{}
	}
}

func (s *Service) rooms(ctx context.Context, domain models.RoomDomain) (map[string]models.ChatRoom, error) {
	if !domain.Valid() {
		return nil, ErrInvalidDomain
	}
	name := RoomsRecordName(domain)
	doc, err := s.store.Read(ctx, name)
	if err == docstore.ErrNotFound {
		return defaultRooms(domain), nil
	}
	if err != nil {
		return nil, err
	}
	rooms := docstore.DecodeMap[models.ChatRoom](name, doc.Value)
	if len(rooms) == 0 {
		return defaultRooms(domain), nil
	}
	return rooms, nil
}

// Rooms lists a domain's rooms, seeding defaults on first use.
func (s *Service) Rooms(ctx context.Context, domain models.RoomDomain) ([]models.ChatRoom, error) {
	rooms, err := s.rooms(ctx, domain)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatRoom, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r)
	}
	return out, nil
}

// updateRooms runs fn against the domain map, seeding defaults when the
// record does not exist yet.
func (s *Service) updateRooms(ctx context.Context, domain models.RoomDomain, fn func(rooms map[string]models.ChatRoom) (bool, error)) error {
	if !domain.Valid() {
		return ErrInvalidDomain
	}
	name := RoomsRecordName(domain)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		rooms := docstore.DecodeMap[models.ChatRoom](name, current)
		if len(rooms) == 0 {
			rooms = defaultRooms(domain)
		}
		changed, err := fn(rooms)
		if err != nil {
			return nil, err
		}
		if !changed {
			return nil, nil
		}
		return json.Marshal(rooms)
	})
	return err
}

// Join adds the user to a room and logs a join message. Joining a room the
// user already belongs to changes nothing.
func (s *Service) Join(ctx context.Context, domain models.RoomDomain, roomID string, user models.User) error {
	return s.updateRooms(ctx, domain, func(rooms map[string]models.ChatRoom) (bool, error) {
		room, ok := rooms[roomID]
		if !ok {
			return false, ErrRoomNotFound
		}
		if room.HasParticipant(user.ID) {
			return false, nil
		}
		room.Participants = append(room.Participants, user.ID)
		room.Messages = append(room.Messages, newMessage(models.SystemUser, texts.JoinBody(user.Pseudo), models.MessageJoin))
		room.LastActivity = time.Now().UTC()
		rooms[roomID] = room
		return true, nil
	})
}

// OpenExpertRoom creates the private consultation room for one expert,
// joining the traveler immediately. Reopening an existing room only joins.
func (s *Service) OpenExpertRoom(ctx context.Context, expert models.Expert, user models.User) (string, error) {
	roomID := "expert_" + expert.ID
	err := s.updateRooms(ctx, models.DomainExpert, func(rooms map[string]models.ChatRoom) (bool, error) {
		room, ok := rooms[roomID]
		if !ok {
			room = models.ChatRoom{
				ID:           roomID,
				Name:         texts.ExpertRoomName(expert.Pseudo),
				Participants: []string{expert.ID},
				Messages:     []models.Message{newMessage(models.SystemUser, texts.ExpertRoomWelcome(expert.Pseudo), models.MessageSystem)},
				LastActivity: time.Now().UTC(),
				IsActive:     true,
			}
		}
		if room.HasParticipant(user.ID) {
			rooms[roomID] = room
			return !ok, nil
		}
		room.Participants = append(room.Participants, user.ID)
		room.LastActivity = time.Now().UTC()
		rooms[roomID] = room
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return roomID, nil
}

// Send appends a text message to a domain room and notifies every other
// participant with a short preview. Senders join implicitly, with the same
// join message an explicit Join logs.
func (s *Service) Send(ctx context.Context, domain models.RoomDomain, roomID string, sender models.User, text string) (models.Message, error) {
	msg := newMessage(sender, text, models.MessageText)
	var recipients []string
	err := s.updateRooms(ctx, domain, func(rooms map[string]models.ChatRoom) (bool, error) {
		room, ok := rooms[roomID]
		if !ok {
			return false, ErrRoomNotFound
		}
		if !room.HasParticipant(sender.ID) {
			room.Participants = append(room.Participants, sender.ID)
			room.Messages = append(room.Messages, newMessage(models.SystemUser, texts.JoinBody(sender.Pseudo), models.MessageJoin))
		}
		room.Messages = append(room.Messages, msg)
		room.LastActivity = msg.Timestamp
		rooms[roomID] = room

		recipients = recipients[:0]
		for _, id := range room.Participants {
			if id != sender.ID {
				recipients = append(recipients, id)
			}
		}
		return true, nil
	})
	if err != nil {
		return models.Message{}, err
	}

	s.events.Publish(ctx, events.KindChatMessage, msg)
	preview := texts.Preview(sender.Pseudo, text, config.MessagePreviewLength)
	for _, id := range recipients {
		if _, nerr := s.notify.Notify(ctx, id, models.Notification{
			Type:    models.NotificationChatMessage,
			Title:   texts.ChatMessageTitle,
			Message: preview,
		}); nerr != nil {
			logger.Log.Warnw("room message notification failed", "room", roomID, "recipient", id, "error", nerr)
		}
	}
	return msg, nil
}

// MarkRoomRead flips the read flag on every message from other senders in
// one room. Idempotent.
func (s *Service) MarkRoomRead(ctx context.Context, domain models.RoomDomain, roomID, userID string) error {
	return s.updateRooms(ctx, domain, func(rooms map[string]models.ChatRoom) (bool, error) {
		room, ok := rooms[roomID]
		if !ok {
			return false, nil
		}
		changed := false
		for i := range room.Messages {
			if room.Messages[i].SenderID != userID && !room.Messages[i].Read {
				room.Messages[i].Read = true
				changed = true
			}
		}
		if changed {
			rooms[roomID] = room
		}
		return changed, nil
	})
}

// AppendSOS appends a message to an SOS request's chat log and notifies
// everyone involved in the request except the sender. A resolved request
// takes no further messages.
func (s *Service) AppendSOS(ctx context.Context, req models.SOSRequest, sender models.User, text string) (models.Message, error) {
	if req.Status == models.SOSResolved {
		logger.Log.Warnw("message on resolved sos request", "request", req.ID, "sender", sender.ID)
		return models.Message{}, ErrRequestResolved
	}
	msg := newMessage(sender, text, models.MessageText)
	name := SOSRoomRecordName(req.ID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.Message](name, current)
		return json.Marshal(append(list, msg))
	})
	if err != nil {
		return models.Message{}, err
	}

	s.events.Publish(ctx, events.KindChatMessage, msg)
	recipients := append([]string{req.UserID}, req.Helpers...)
	seen := map[string]bool{sender.ID: true}
	for _, id := range recipients {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, nerr := s.notify.Notify(ctx, id, models.Notification{
			Type:      models.NotificationChatMessage,
			Title:     texts.SOSChatTitle,
			Message:   texts.SOSChatBody(sender.Pseudo),
			RequestID: req.ID,
		}); nerr != nil {
			logger.Log.Warnw("sos chat notification failed", "request", req.ID, "recipient", id, "error", nerr)
		}
	}
	return msg, nil
}

// SOSMessages returns one request's chat log in insertion order.
func (s *Service) SOSMessages(ctx context.Context, requestID string) ([]models.Message, error) {
	name := SOSRoomRecordName(requestID)
	doc, err := s.store.Read(ctx, name)
	if err == docstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return docstore.DecodeList[models.Message](name, doc.Value), nil
}

// MarkSOSRead flips read on the foreign messages of one request's log.
func (s *Service) MarkSOSRead(ctx context.Context, requestID, userID string) error {
	name := SOSRoomRecordName(requestID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.Message](name, current)
		changed := false
		for i := range list {
			if list[i].SenderID != userID && !list[i].Read {
				list[i].Read = true
				changed = true
			}
		}
		if !changed {
			return nil, nil
		}
		return json.Marshal(list)
	})
	return err
}

// SendDirect appends to a social pair's log, refreshes the conversation
// summary and notifies the other participant.
func (s *Service) SendDirect(ctx context.Context, conv models.Conversation, sender models.User, text string) (models.Message, error) {
	if !conv.HasParticipant(sender.ID) {
		return models.Message{}, ErrNotParticipant
	}
	msg := newMessage(sender, text, models.MessageText)

	name := DirectRecordName(conv.ID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.Message](name, current)
		return json.Marshal(append(list, msg))
	})
	if err != nil {
		return models.Message{}, err
	}

	convName := "conversation_" + conv.ID
	_, err = docstore.Update(ctx, s.store, convName, func(current []byte) ([]byte, error) {
		stored := docstore.DecodeOne[models.Conversation](convName, current)
		if stored == nil {
			c := conv
			stored = &c
		}
		stored.LastMessage = &msg
		stored.Timestamp = msg.Timestamp
		return json.Marshal(stored)
	})
	if err != nil {
		logger.Log.Warnw("conversation summary update failed", "conversation", conv.ID, "error", err)
	}

	s.events.Publish(ctx, events.KindChatMessage, msg)
	if other := conv.Other(sender.ID); other != "" {
		if _, nerr := s.notify.Notify(ctx, other, models.Notification{
			Type:           models.NotificationChatMessage,
			Title:          texts.ChatMessageTitle,
			Message:        texts.Preview(sender.Pseudo, text, config.MessagePreviewLength),
			ConversationID: conv.ID,
		}); nerr != nil {
			logger.Log.Warnw("direct message notification failed", "conversation", conv.ID, "error", nerr)
		}
	}
	return msg, nil
}

// DirectMessages returns a social pair's log in insertion order.
func (s *Service) DirectMessages(ctx context.Context, pairID string) ([]models.Message, error) {
	name := DirectRecordName(pairID)
	doc, err := s.store.Read(ctx, name)
	if err == docstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return docstore.DecodeList[models.Message](name, doc.Value), nil
}

// MarkDirectRead flips read on the foreign messages of a social pair's log.
func (s *Service) MarkDirectRead(ctx context.Context, pairID, userID string) error {
	name := DirectRecordName(pairID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.Message](name, current)
		changed := false
		for i := range list {
			if list[i].SenderID != userID && !list[i].Read {
				list[i].Read = true
				changed = true
			}
		}
		if !changed {
			return nil, nil
		}
		return json.Marshal(list)
	})
	return err
}
