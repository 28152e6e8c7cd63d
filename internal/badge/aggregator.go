// Package badge projects unread activity into the single indicator shown
// next to the conversations entry point. The projection is read-only: it
// never mutates the records it scans.
package badge

import (
	"context"
	"strings"

	"wanderlink/backend/internal/chat"
	"wanderlink/backend/internal/config"
	"wanderlink/backend/internal/contacts"
	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/sos"
)

type Aggregator struct {
	store docstore.Store
}

func NewAggregator(store docstore.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Compute scans the user's SOS chats, expert rooms, social conversations
// and pending contact requests. Priority is strict precedence
// sos > expert > social, never magnitude.
func (a *Aggregator) Compute(ctx context.Context, userID string) (models.BadgeData, error) {
	sosCount, err := a.sosCount(ctx, userID)
	if err != nil {
		return models.BadgeData{}, err
	}
	expertCount, err := a.expertCount(ctx, userID)
	if err != nil {
		return models.BadgeData{}, err
	}
	socialCount, err := a.socialCount(ctx, userID)
	if err != nil {
		return models.BadgeData{}, err
	}

	data := models.BadgeData{
		SOSCount:    sosCount,
		ExpertCount: expertCount,
		SocialCount: socialCount,
		TotalCount:  sosCount + expertCount + socialCount,
	}
	switch {
	case sosCount > 0:
		data.Priority = models.PrioritySOS
		data.Color = config.BadgeColorSOS
		data.ColorHex = config.BadgeHexSOS
		data.BackgroundHex = config.BadgeBackgroundSOS
	case expertCount > 0:
		data.Priority = models.PriorityExpert
		data.Color = config.BadgeColorExpert
		data.ColorHex = config.BadgeHexExpert
		data.BackgroundHex = config.BadgeBackgroundExpert
	case socialCount > 0:
		data.Priority = models.PrioritySocial
		data.Color = config.BadgeColorSocial
		data.ColorHex = config.BadgeHexSocial
		data.BackgroundHex = config.BadgeBackgroundSocial
	default:
		data.Priority = models.PriorityNone
		data.Color = config.BadgeColorNone
		data.ColorHex = config.BadgeHexNone
		data.BackgroundHex = config.BadgeBackgroundNone
	}
	return data, nil
}

func unreadFrom(messages []models.Message, userID string) int {
	n := 0
	for _, m := range messages {
		if m.SenderID != userID && !m.Read {
			n++
		}
	}
	return n
}

// sosCount counts the requests the user owns or helps on whose chat holds
// at least one unread foreign message. Requests, not messages: one noisy
// SOS chat still reads as a single emergency.
func (a *Aggregator) sosCount(ctx context.Context, userID string) (int, error) {
	doc, err := a.store.Read(ctx, sos.RecordName)
	if err == docstore.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	total := 0
	for _, req := range docstore.DecodeList[models.SOSRequest](sos.RecordName, doc.Value) {
		if !req.InvolvesUser(userID) {
			continue
		}
		name := chat.SOSRoomRecordName(req.ID)
		chatDoc, err := a.store.Read(ctx, name)
		if err == docstore.ErrNotFound {
			continue
		}
		if err != nil {
			return 0, err
		}
		if unreadFrom(docstore.DecodeList[models.Message](name, chatDoc.Value), userID) > 0 {
			total++
		}
	}
	return total, nil
}

// expertCount sums unread foreign messages across the expert rooms the
// user participates in.
func (a *Aggregator) expertCount(ctx context.Context, userID string) (int, error) {
	name := chat.RoomsRecordName(models.DomainExpert)
	doc, err := a.store.Read(ctx, name)
	if err == docstore.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	total := 0
	for _, room := range docstore.DecodeMap[models.ChatRoom](name, doc.Value) {
		if room.HasParticipant(userID) {
			total += room.UnreadFrom(userID)
		}
	}
	return total, nil
}

// socialCount sums unread foreign direct messages over the user's
// conversations, plus the pending contact requests addressed to the user.
func (a *Aggregator) socialCount(ctx context.Context, userID string) (int, error) {
	names, err := a.store.List(ctx, "conversation_")
	if err != nil {
		return 0, err
	}
	total := 0
	for _, name := range names {
		doc, err := a.store.Read(ctx, name)
		if err == docstore.ErrNotFound {
			continue
		}
		if err != nil {
			return 0, err
		}
		conv := docstore.DecodeOne[models.Conversation](name, doc.Value)
		if conv == nil || !conv.HasParticipant(userID) {
			continue
		}
		pairID := strings.TrimPrefix(name, "conversation_")
		logName := chat.DirectRecordName(pairID)
		logDoc, err := a.store.Read(ctx, logName)
		if err == docstore.ErrNotFound {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += unreadFrom(docstore.DecodeList[models.Message](logName, logDoc.Value), userID)
	}

	reqDoc, err := a.store.Read(ctx, contacts.RecordName)
	if err == docstore.ErrNotFound {
		return total, nil
	}
	if err != nil {
		return 0, err
	}
	for _, req := range docstore.DecodeList[models.ContactRequest](contacts.RecordName, reqDoc.Value) {
		if req.ToUserID == userID && req.Status == models.ContactPending {
			total++
		}
	}
	return total, nil
}
