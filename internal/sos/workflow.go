// Package sos runs the emergency-request lifecycle. A request starts
// active, moves to in_progress when the first helper offers, and ends
// resolved when its owner closes it. Resolved is terminal.
package sos

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

// RecordName is the store key of the shared SOS request list.
const RecordName = "sosRequests"

var (
	ErrInvalidCategory = errors.New("sos: unknown category")
	ErrInvalidUrgency  = errors.New("sos: unknown urgency level")
	ErrNotFound        = errors.New("sos: request not found")
	ErrNotOwner        = errors.New("sos: only the owner may resolve a request")
)

// Alerter relays critical requests to an out-of-band channel. Failures
// are logged, never surfaced: an SOS must be created even when the relay
// is down.
type Alerter interface {
	Alert(ctx context.Context, req models.SOSRequest) error
}

type Workflow struct {
	store   docstore.Store
	notify  *notify.Service
	events  events.Publisher
	alerter Alerter
}

func NewWorkflow(store docstore.Store, n *notify.Service, pub events.Publisher, alerter Alerter) *Workflow {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Workflow{store: store, notify: n, events: pub, alerter: alerter}
}

func validCategory(c string) bool {
	switch c {
	case models.SOSCategoryMedical, models.SOSCategoryTransport, models.SOSCategoryLodging,
		models.SOSCategorySafety, models.SOSCategoryMoney, models.SOSCategoryOther:
		return true
	}
	return false
}

// Create opens a new request in the active state. Critical requests are
// additionally relayed through the alerter, best effort.
func (w *Workflow) Create(ctx context.Context, owner models.User, message, category string, urgency models.UrgencyLevel, loc *models.Location) (models.SOSRequest, error) {
	if !validCategory(category) {
		return models.SOSRequest{}, ErrInvalidCategory
	}
	if !urgency.Valid() {
		return models.SOSRequest{}, ErrInvalidUrgency
	}

	req := models.SOSRequest{
		ID:           "sos_" + uuid.NewString(),
		UserID:       owner.ID,
		UserPseudo:   owner.Pseudo,
		Message:      message,
		Category:     category,
		UrgencyLevel: urgency,
		Status:       models.SOSActive,
		Helpers:      []string{},
		Responses:    []models.SOSResponse{},
		Location:     loc,
		Timestamp:    time.Now().UTC(),
	}

	_, err := docstore.Update(ctx, w.store, RecordName, func(current []byte) ([]byte, error) {
		list := docstore.DecodeList[models.SOSRequest](RecordName, current)
		return json.Marshal(append([]models.SOSRequest{req}, list...))
	})
	if err != nil {
		return models.SOSRequest{}, err
	}

	w.events.Publish(ctx, events.KindSOSCreated, req)

	if req.UrgencyLevel == models.UrgencyCritical && w.alerter != nil {
		if alertErr := w.alerter.Alert(ctx, req); alertErr != nil {
			logger.Log.Warnw("critical sos alert relay failed", "request", req.ID, "error", alertErr)
		}
	}
	return req, nil
}

// OfferHelp records one helper's offer. The first offer moves the request
// from active to in_progress; later offers append without touching the
// status. Offers on missing or resolved requests, or from the owner, are
// dropped with a warning.
func (w *Workflow) OfferHelp(ctx context.Context, helper models.User, requestID, message string) (bool, error) {
	if message == "" {
		message = texts.SOSDefaultOffer(helper.Pseudo)
	}

	var owner string
	offered := false
	_, err := docstore.Update(ctx, w.store, RecordName, func(current []byte) ([]byte, error) {
		owner, offered = "", false
		list := docstore.DecodeList[models.SOSRequest](RecordName, current)
		idx := -1
		for i := range list {
			if list[i].ID == requestID {
				idx = i
				break
			}
		}
		if idx < 0 {
			logger.Log.Warnw("offer on unknown sos request", "request", requestID, "helper", helper.ID)
			return nil, nil
		}
		req := &list[idx]
		if req.Status == models.SOSResolved {
			logger.Log.Warnw("offer on resolved sos request", "request", requestID, "helper", helper.ID)
			return nil, nil
		}
		if req.UserID == helper.ID {
			logger.Log.Warnw("owner cannot offer help on own sos request", "request", requestID)
			return nil, nil
		}

		req.Responses = append(req.Responses, models.SOSResponse{
			ID:           "response_" + uuid.NewString(),
			HelperID:     helper.ID,
			HelperPseudo: helper.Pseudo,
			Message:      message,
			Timestamp:    time.Now().UTC(),
		})
		if !req.HasHelper(helper.ID) {
			req.Helpers = append(req.Helpers, helper.ID)
		}
		if req.Status == models.SOSActive {
			req.Status = models.SOSInProgress
		}
		owner = req.UserID
		offered = true
		return json.Marshal(list)
	})
	if err != nil || !offered {
		return false, err
	}

	w.events.Publish(ctx, events.KindSOSOffer, map[string]string{
		"requestId": requestID,
		"helperId":  helper.ID,
	})

	if _, nerr := w.notify.Notify(ctx, owner, models.Notification{
		Type:      models.NotificationSOSResponse,
		Title:     texts.SOSResponseTitle,
		Message:   texts.SOSResponseBody(helper.Pseudo),
		RequestID: requestID,
	}); nerr != nil {
		logger.Log.Warnw("sos offer notification failed", "request", requestID, "error", nerr)
	}
	return true, nil
}

// Resolve closes a request. Only the owner may resolve; resolving an
// already resolved request changes nothing.
func (w *Workflow) Resolve(ctx context.Context, userID, requestID string) error {
	resolved := false
	_, err := docstore.Update(ctx, w.store, RecordName, func(current []byte) ([]byte, error) {
		resolved = false
		list := docstore.DecodeList[models.SOSRequest](RecordName, current)
		for i := range list {
			if list[i].ID != requestID {
				continue
			}
			if list[i].UserID != userID {
				return nil, ErrNotOwner
			}
			if list[i].Status == models.SOSResolved {
				logger.Log.Warnw("resolve on already resolved sos request", "request", requestID)
				return nil, nil
			}
			list[i].Status = models.SOSResolved
			resolved = true
			return json.Marshal(list)
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return err
	}
	if resolved {
		w.events.Publish(ctx, events.KindSOSResolved, map[string]string{"requestId": requestID})
	}
	return nil
}

// List returns every request, newest first.
func (w *Workflow) List(ctx context.Context) ([]models.SOSRequest, error) {
	doc, err := w.store.Read(ctx, RecordName)
	if err == docstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return docstore.DecodeList[models.SOSRequest](RecordName, doc.Value), nil
}

// ListFor returns the requests the user owns or helps on.
func (w *Workflow) ListFor(ctx context.Context, userID string) ([]models.SOSRequest, error) {
	all, err := w.List(ctx)
	if err != nil {
		return nil, err
	}
	var mine []models.SOSRequest
	for _, req := range all {
		if req.InvolvesUser(userID) {
			mine = append(mine, req)
		}
	}
	return mine, nil
}

// Get returns one request by id.
func (w *Workflow) Get(ctx context.Context, requestID string) (models.SOSRequest, error) {
	all, err := w.List(ctx)
	if err != nil {
		return models.SOSRequest{}, err
	}
	for _, req := range all {
		if req.ID == requestID {
			return req, nil
		}
	}
	return models.SOSRequest{}, ErrNotFound
}
