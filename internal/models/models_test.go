package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlink/backend/internal/models"
)

func roundTrip[T any](t *testing.T, original T) {
	t.Helper()
	raw, err := json.Marshal(original)
	require.NoError(t, err)
	var decoded T
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original, decoded)
}

func TestEntitiesSurviveSerialization(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	message := models.Message{
		ID:           "msg_1",
		SenderID:     "user_lea",
		SenderPseudo: "Léa",
		Message:      "on se retrouve où ?",
		Timestamp:    at,
		Kind:         models.MessageText,
		Read:         true,
	}

	t.Run("contact request", func(t *testing.T) {
		roundTrip(t, models.ContactRequest{
			ID:         "req_1",
			FromUserID: "user_lea",
			FromPseudo: "Léa",
			ToUserID:   "user_marc",
			ToPseudo:   "Marc",
			Message:    "ton récit sur le Japon m'a intriguée",
			Reason:     models.ReasonStoryQuestion,
			Timestamp:  at,
			Status:     models.ContactPending,
		})
	})

	t.Run("conversation", func(t *testing.T) {
		roundTrip(t, models.Conversation{
			ID:                 models.PairConversationID("user_lea", "user_marc"),
			Participants:       []string{"user_lea", "user_marc"},
			ParticipantPseudos: []string{"Léa", "Marc"},
			Title:              "Léa & Marc",
			LastMessage:        &message,
			Timestamp:          at,
			Status:             models.ConversationActive,
		})
	})

	t.Run("sos request", func(t *testing.T) {
		roundTrip(t, models.SOSRequest{
			ID:           "sos_1",
			UserID:       "user_lea",
			UserPseudo:   "Léa",
			Message:      "passeport volé",
			Category:     models.SOSCategorySafety,
			UrgencyLevel: models.UrgencyCritical,
			Status:       models.SOSInProgress,
			Helpers:      []string{"user_marc"},
			Responses: []models.SOSResponse{{
				ID:           "response_1",
				HelperID:     "user_marc",
				HelperPseudo: "Marc",
				Message:      "je connais le consulat",
				Timestamp:    at,
			}},
			Location: &models.Location{
				Latitude:  35.6762,
				Longitude: 139.6503,
				Address:   "Shibuya, Tokyo",
			},
			Timestamp: at,
		})
	})

	t.Run("chat room", func(t *testing.T) {
		roundTrip(t, models.ChatRoom{
			ID:           "general",
			Name:         "💬 Général",
			Participants: []string{"user_lea", "user_marc"},
			Messages:     []models.Message{message},
			LastActivity: at,
			IsActive:     true,
		})
	})

	t.Run("message", func(t *testing.T) {
		roundTrip(t, message)
	})

	t.Run("notification", func(t *testing.T) {
		roundTrip(t, models.Notification{
			ID:             "notif_1",
			Type:           models.NotificationChatMessage,
			Title:          "Nouveau message",
			Message:        "Léa: on se retrouve où ?",
			Timestamp:      at,
			UserID:         "user_marc",
			RequestID:      "sos_1",
			ConversationID: models.PairConversationID("user_lea", "user_marc"),
			Read:           false,
		})
	})
}
