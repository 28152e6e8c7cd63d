package chat_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlink/backend/internal/chat"
	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/notify"
)

var (
	lea  = models.User{ID: "user_lea", Pseudo: "Léa"}
	marc = models.User{ID: "user_marc", Pseudo: "Marc"}
)

func newService(t *testing.T) (*chat.Service, *notify.Service) {
	t.Helper()
	store := docstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	n := notify.NewService(store, nil)
	return chat.NewService(store, n, nil), n
}

func TestDefaultRoomsSeeded(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rooms, err := svc.Rooms(ctx, models.DomainGeneral)
	require.NoError(t, err)
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"general", "sos", "travel"}, ids)

	sosRooms, err := svc.Rooms(ctx, models.DomainSOS)
	require.NoError(t, err)
	require.Len(t, sosRooms, 1)
	require.Len(t, sosRooms[0].Messages, 1)
	assert.Equal(t, models.MessageSystem, sosRooms[0].Messages[0].Kind)

	_, err = svc.Rooms(ctx, "galactic")
	assert.ErrorIs(t, err, chat.ErrInvalidDomain)
}

func TestJoinIsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Join(ctx, models.DomainGeneral, "general", lea))
	require.NoError(t, svc.Join(ctx, models.DomainGeneral, "general", lea))

	rooms, err := svc.Rooms(ctx, models.DomainGeneral)
	require.NoError(t, err)
	for _, r := range rooms {
		if r.ID != "general" {
			continue
		}
		assert.Equal(t, []string{lea.ID}, r.Participants)
		joins := 0
		for _, m := range r.Messages {
			if m.Kind == models.MessageJoin {
				joins++
			}
		}
		assert.Equal(t, 1, joins, "one join message per effective join")
	}

	err = svc.Join(ctx, models.DomainGeneral, "missing", lea)
	assert.ErrorIs(t, err, chat.ErrRoomNotFound)
}

func TestSendNotifiesOtherParticipantsWithPreview(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Join(ctx, models.DomainGeneral, "general", lea))
	require.NoError(t, svc.Join(ctx, models.DomainGeneral, "general", marc))

	long := strings.Repeat("à", 80)
	msg, err := svc.Send(ctx, models.DomainGeneral, "general", lea, long)
	require.NoError(t, err)
	assert.Equal(t, models.MessageText, msg.Kind)

	list, err := n.List(ctx, marc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationChatMessage, list[0].Type)
	assert.True(t, strings.HasPrefix(list[0].Message, "Léa: "))
	assert.True(t, strings.HasSuffix(list[0].Message, "..."))
	assert.Equal(t, 50, len([]rune(strings.TrimSuffix(strings.TrimPrefix(list[0].Message, "Léa: "), "..."))))

	own, err := n.List(ctx, lea.ID)
	require.NoError(t, err)
	assert.Empty(t, own, "sender never notifies themselves")
}

func TestSendImplicitJoinLogsJoinMessage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, models.DomainGeneral, "general", lea, "bonjour")
	require.NoError(t, err)

	rooms, err := svc.Rooms(ctx, models.DomainGeneral)
	require.NoError(t, err)
	for _, r := range rooms {
		if r.ID != "general" {
			continue
		}
		assert.Equal(t, []string{lea.ID}, r.Participants)
		require.Len(t, r.Messages, 2)
		assert.Equal(t, models.MessageJoin, r.Messages[0].Kind)
		assert.Equal(t, models.MessageText, r.Messages[1].Kind)
	}
}

func TestMarkRoomRead(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Join(ctx, models.DomainGeneral, "general", lea))
	require.NoError(t, svc.Join(ctx, models.DomainGeneral, "general", marc))
	_, err := svc.Send(ctx, models.DomainGeneral, "general", lea, "bonjour")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRoomRead(ctx, models.DomainGeneral, "general", marc.ID))
	require.NoError(t, svc.MarkRoomRead(ctx, models.DomainGeneral, "general", marc.ID))

	rooms, err := svc.Rooms(ctx, models.DomainGeneral)
	require.NoError(t, err)
	for _, r := range rooms {
		if r.ID == "general" {
			assert.Zero(t, r.UnreadFrom(marc.ID))
		}
	}
}

func TestAppendSOSNotifiesOwnerAndHelpers(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	req := models.SOSRequest{
		ID:         "sos_1",
		UserID:     lea.ID,
		UserPseudo: lea.Pseudo,
		Helpers:    []string{marc.ID, "user_zoe"},
	}
	msg, err := svc.AppendSOS(ctx, req, marc, "j'arrive dans 5 min")
	require.NoError(t, err)

	messages, err := svc.SOSMessages(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, msg.ID, messages[0].ID)

	for _, recipient := range []string{lea.ID, "user_zoe"} {
		list, err := n.List(ctx, recipient)
		require.NoError(t, err)
		require.Len(t, list, 1, "recipient %s", recipient)
		assert.Equal(t, req.ID, list[0].RequestID)
	}
	own, err := n.List(ctx, marc.ID)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestAppendSOSRejectsResolvedRequest(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	req := models.SOSRequest{
		ID:      "sos_1",
		UserID:  lea.ID,
		Status:  models.SOSResolved,
		Helpers: []string{marc.ID},
	}
	_, err := svc.AppendSOS(ctx, req, marc, "toujours là ?")
	assert.ErrorIs(t, err, chat.ErrRequestResolved)

	messages, err := svc.SOSMessages(ctx, req.ID)
	require.NoError(t, err)
	assert.Empty(t, messages, "resolved chat log stays closed")

	list, err := n.List(ctx, lea.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "owner is not re-notified on a closed request")
}

func TestMarkSOSRead(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := models.SOSRequest{ID: "sos_1", UserID: lea.ID, Helpers: []string{marc.ID}}
	_, err := svc.AppendSOS(ctx, req, marc, "message")
	require.NoError(t, err)

	require.NoError(t, svc.MarkSOSRead(ctx, req.ID, lea.ID))
	messages, err := svc.SOSMessages(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].Read)
}

func TestSendDirect(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	conv := models.Conversation{
		ID:           models.PairConversationID(lea.ID, marc.ID),
		Participants: []string{lea.ID, marc.ID},
		Status:       models.ConversationActive,
	}

	_, err := svc.SendDirect(ctx, conv, models.User{ID: "user_intrus", Pseudo: "Intrus"}, "coucou")
	assert.ErrorIs(t, err, chat.ErrNotParticipant)

	msg, err := svc.SendDirect(ctx, conv, lea, "coucou Marc")
	require.NoError(t, err)

	messages, err := svc.DirectMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, msg.ID, messages[0].ID)

	list, err := n.List(ctx, marc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, conv.ID, list[0].ConversationID)

	require.NoError(t, svc.MarkDirectRead(ctx, conv.ID, marc.ID))
	messages, err = svc.DirectMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, messages[0].Read)
}

func TestOpenExpertRoom(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	expert := models.Expert{ID: "42", Pseudo: "Marie-Claire"}
	roomID, err := svc.OpenExpertRoom(ctx, expert, lea)
	require.NoError(t, err)
	assert.Equal(t, "expert_42", roomID)

	// reopening joins without duplicating the room
	again, err := svc.OpenExpertRoom(ctx, expert, marc)
	require.NoError(t, err)
	assert.Equal(t, roomID, again)

	rooms, err := svc.Rooms(ctx, models.DomainExpert)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.ElementsMatch(t, []string{expert.ID, lea.ID, marc.ID}, rooms[0].Participants)
	require.NotEmpty(t, rooms[0].Messages)
	assert.Equal(t, models.MessageSystem, rooms[0].Messages[0].Kind)
}
