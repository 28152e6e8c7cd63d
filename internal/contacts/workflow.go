// Package contacts runs the contact-request state machine:
// pending → accepted | declined, both terminal. Acceptance creates the
// pair's conversation and its seeded message log.
package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/events"
	"wanderlink/backend/internal/logger"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/notify"
	"wanderlink/backend/internal/texts"
)

// RecordName is the shared request list, filtered by participant on read.
const RecordName = "contactRequests"

var (
	ErrInvalidReason = errors.New("contacts: unknown reason")
	ErrSelfRequest   = errors.New("contacts: cannot request contact with yourself")
	ErrPendingExists = errors.New("contacts: a pending request for this pair already exists")
	ErrNotRecipient  = errors.New("contacts: only the recipient may answer a request")
)

type Workflow struct {
	store  docstore.Store
	notify *notify.Service
	events events.Publisher
}

func NewWorkflow(store docstore.Store, n *notify.Service, pub events.Publisher) *Workflow {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Workflow{store: store, notify: n, events: pub}
}

// Send creates a pending request and notifies the target. A second send
// while a pending request exists between the same pair is rejected so a
// pair can never end up with two conversations.
func (w *Workflow) Send(ctx context.Context, from, to models.User, reason models.ContactReason, message string) (models.ContactRequest, error) {
	if !reason.Valid() {
		return models.ContactRequest{}, ErrInvalidReason
	}
	if from.ID == to.ID {
		return models.ContactRequest{}, ErrSelfRequest
	}

	req := models.ContactRequest{
		ID:         "request_" + uuid.NewString(),
		FromUserID: from.ID,
		FromPseudo: from.Pseudo,
		ToUserID:   to.ID,
		ToPseudo:   to.Pseudo,
		Message:    message,
		Reason:     reason,
		Timestamp:  time.Now().UTC(),
		Status:     models.ContactPending,
	}

	_, err := docstore.Update(ctx, w.store, RecordName, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.ContactRequest](RecordName, current)
		for _, r := range list {
			if r.Status == models.ContactPending && r.Involves(from.ID) && r.Involves(to.ID) {
				return nil, ErrPendingExists
			}
		}
		return json.Marshal(append([]models.ContactRequest{req}, list...))
	})
	if err != nil {
		return models.ContactRequest{}, err
	}

	_, err = w.notify.Notify(ctx, to.ID, models.Notification{
		Type:      models.NotificationContactRequest,
		Title:     texts.ContactRequestTitle,
		Message:   texts.ContactRequestBody(from.Pseudo),
		RequestID: req.ID,
	})
	if err != nil {
		logger.Log.Warnw("contact request notification failed", "request", req.ID, "error", err)
	}
	w.events.Publish(ctx, events.KindContactSent, req)
	return req, nil
}

// Accept moves a pending request to accepted, creates the deterministic
// conversation for the pair, seeds the welcome message and notifies the
// sender. A request already in a terminal state is a silent no-op
// (changed=false); a missing request likewise. Only the recipient may
// accept.
func (w *Workflow) Accept(ctx context.Context, requestID string, actor models.User) (bool, *models.Conversation, error) {
	var accepted *models.ContactRequest
	_, err := docstore.Update(ctx, w.store, RecordName, func(current []byte) ([]byte, error) {
		accepted = nil
		list := docstore.DecodeList[models.ContactRequest](RecordName, current)
		for i := range list {
			if list[i].ID != requestID {
				continue
			}
			if list[i].ToUserID != actor.ID {
				return nil, ErrNotRecipient
			}
			if list[i].Terminal() {
				logger.Log.Warnw("ignoring transition on terminal contact request",
					"request", requestID, "status", list[i].Status)
				return nil, nil
			}
			list[i].Status = models.ContactAccepted
			cp := list[i]
			accepted = &cp
			return json.Marshal(list)
		}
		logger.Log.Warnw("contact request not found", "request", requestID)
		return nil, nil
	})
	if err != nil || accepted == nil {
		return false, nil, err
	}

	conv, err := w.createConversation(ctx, *accepted)
	if err != nil {
		return true, nil, err
	}

	_, err = w.notify.Notify(ctx, accepted.FromUserID, models.Notification{
		Type:           models.NotificationContactAccepted,
		Title:          texts.ContactAcceptedTitle,
		Message:        texts.ContactAcceptedBody(accepted.ToPseudo),
		RequestID:      accepted.ID,
		ConversationID: conv.ID,
	})
	if err != nil {
		logger.Log.Warnw("contact accepted notification failed", "request", requestID, "error", err)
	}
	w.events.Publish(ctx, events.KindContactAccepted, accepted)
	return true, conv, nil
}

// createConversation writes conversation_<pairId> and its message log. Uses
// create-only CAS so a duplicate acceptance path can never produce a second
// conversation for the pair.
func (w *Workflow) createConversation(ctx context.Context, req models.ContactRequest) (*models.Conversation, error) {
	pairID := models.PairConversationID(req.FromUserID, req.ToUserID)
	conv := models.Conversation{
		ID:                 pairID,
		Participants:       []string{req.FromUserID, req.ToUserID},
		ParticipantPseudos: []string{req.FromPseudo, req.ToPseudo},
		Title:              texts.ConversationTitle(req.FromPseudo),
		Timestamp:          time.Now().UTC(),
		Status:             models.ConversationActive,
	}

	raw, err := json.Marshal(conv)
	if err != nil {
		return nil, err
	}
	_, err = w.store.CompareAndSwap(ctx, "conversation_"+pairID, raw, 0)
	if errors.Is(err, docstore.ErrVersionMismatch) {
		// Already created by the other side; reuse it.
		doc, readErr := w.store.Read(ctx, "conversation_"+pairID)
		if readErr != nil {
			return nil, readErr
		}
		if existing := docstore.DecodeOne[models.Conversation]("conversation_"+pairID, doc.Value); existing != nil {
			return existing, nil
		}
		return &conv, nil
	}
	if err != nil {
		return nil, err
	}

	welcome := models.Message{
		ID:           "msg_" + uuid.NewString(),
		SenderID:     models.SystemUser.ID,
		SenderPseudo: models.SystemUser.Pseudo,
		Message:      texts.ContactWelcome(req.ToPseudo),
		Timestamp:    time.Now().UTC(),
		Kind:         models.MessageSystem,
	}
	seed, err := json.Marshal([]models.Message{welcome})
	if err != nil {
		return nil, err
	}
	if _, err := w.store.Write(ctx, "messages_"+pairID, seed); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Decline moves a pending request to declined. Same guards as Accept; no
// conversation is created.
func (w *Workflow) Decline(ctx context.Context, requestID string, actor models.User) (bool, error) {
	changed := false
	_, err := docstore.Update(ctx, w.store, RecordName, func(current []byte) ([]byte, error) {
		changed = false
		list := docstore.DecodeList[models.ContactRequest](RecordName, current)
		for i := range list {
			if list[i].ID != requestID {
				continue
			}
			if list[i].ToUserID != actor.ID {
				return nil, ErrNotRecipient
			}
			if list[i].Terminal() {
				logger.Log.Warnw("ignoring transition on terminal contact request",
					"request", requestID, "status", list[i].Status)
				return nil, nil
			}
			list[i].Status = models.ContactDeclined
			changed = true
			return json.Marshal(list)
		}
		logger.Log.Warnw("contact request not found", "request", requestID)
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		w.events.Publish(ctx, events.KindContactDeclined, requestID)
	}
	return changed, nil
}

// ListFor returns the requests the user participates in, newest first.
func (w *Workflow) ListFor(ctx context.Context, userID string) ([]models.ContactRequest, error) {
	doc, err := w.store.Read(ctx, RecordName)
	if err == docstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []models.ContactRequest
	for _, r := range docstore.DecodeList[models.ContactRequest](RecordName, doc.Value) {
		if r.Involves(userID) {
			out = append(out, r)
		}
	}
	return out, nil
}

// PendingFor counts pending requests addressed to the user. Feeds the
// social part of the badge.
func (w *Workflow) PendingFor(ctx context.Context, userID string) (int, error) {
	list, err := w.ListFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range list {
		if r.ToUserID == userID && r.Status == models.ContactPending {
			n++
		}
	}
	return n, nil
}

// Conversation loads the pair conversation when it exists.
func (w *Workflow) Conversation(ctx context.Context, pairID string) (*models.Conversation, error) {
	doc, err := w.store.Read(ctx, "conversation_"+pairID)
	if err == docstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return docstore.DecodeOne[models.Conversation]("conversation_"+pairID, doc.Value), nil
}
