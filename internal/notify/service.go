// Package notify owns the per-recipient notification records. It is the
// sole cross-user signaling primitive: every workflow reaches another user
// through Notify.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/events"
	"wanderlink/backend/internal/models"
)

type Service struct {
	store  docstore.Store
	events events.Publisher
}

func NewService(store docstore.Store, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{store: store, events: pub}
}

// RecordName returns the store key of one recipient's notification list.
func RecordName(userID string) string { return "notifications_" + userID }

// Notify prepends a notification to the recipient's list. ID, timestamp,
// recipient and the unread flag are assigned here; a notification is never
// addressed to more than one user.
func (s *Service) Notify(ctx context.Context, recipientID string, n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = "notif_" + uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	n.UserID = recipientID
	n.Read = false

	name := RecordName(recipientID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.Notification](name, current)
		return json.Marshal(append([]models.Notification{n}, list...))
	})
	if err != nil {
		return models.Notification{}, err
	}
	s.events.Publish(ctx, events.KindNotification, n)
	return n, nil
}

// List returns the recipient's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Notification, error) {
	name := RecordName(userID)
	doc, err := s.store.Read(ctx, name)
	if err == docstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return docstore.DecodeList[models.Notification](name, doc.Value), nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n, nil
}

// MarkRead flips one notification to read. Idempotent: reapplying to an
// already-read or missing id changes nothing.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	name := RecordName(userID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.Notification](name, current)
		changed := false
		for i := range list {
			if list[i].ID == notificationID && !list[i].Read {
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

// MarkAllRead is the bulk idempotent variant.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	name := RecordName(userID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.Notification](name, current)
		changed := false
		for i := range list {
			if !list[i].Read {
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

// Delete removes one notification. Missing ids are a no-op.
func (s *Service) Delete(ctx context.Context, userID, notificationID string) error {
	name := RecordName(userID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.Notification](name, current)
		kept := list[:0]
		for _, item := range list {
			if item.ID != notificationID {
				kept = append(kept, item)
			}
		}
		if len(kept) == len(list) {
			return nil, nil
		}
		return json.Marshal(kept)
	})
	return err
}

// DeleteAll clears the recipient's list.
func (s *Service) DeleteAll(ctx context.Context, userID string) error {
	name := RecordName(userID)
	_, err := docstore.Update(ctx, s.store, name, func(current []byte) ([]byte, error) {
		if len(docstore.DecodeList[models.Notification](name, current)) == 0 {
			return nil, nil
		}
		return json.Marshal([]models.Notification{})
	})
	return err
}
