package contacts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlink/backend/internal/contacts"
	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/notify"
)

var (
	alice = models.User{ID: "user_alice", Pseudo: "Alice"}
	bob   = models.User{ID: "user_bob", Pseudo: "Bob"}
)

func newWorkflow(t *testing.T) (*contacts.Workflow, *notify.Service, docstore.Store) {
	t.Helper()
	store := docstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	n := notify.NewService(store, nil)
	return contacts.NewWorkflow(store, n, nil), n, store
}

func TestSendNotifiesRecipient(t *testing.T) {
	wf, n, _ := newWorkflow(t)
	ctx := context.Background()

	req, err := wf.Send(ctx, alice, bob, models.ReasonTravelAdvice, "Salut !")
	require.NoError(t, err)
	assert.Equal(t, models.ContactPending, req.Status)
	assert.Equal(t, alice.ID, req.FromUserID)
	assert.Equal(t, bob.ID, req.ToUserID)

	list, err := n.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationContactRequest, list[0].Type)
	assert.Equal(t, req.ID, list[0].RequestID)

	fromAlice, err := n.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, fromAlice, "sender gets no notification")
}

func TestSendGuards(t *testing.T) {
	wf, _, _ := newWorkflow(t)
	ctx := context.Background()

	_, err := wf.Send(ctx, alice, alice, models.ReasonOther, "")
	assert.ErrorIs(t, err, contacts.ErrSelfRequest)

	_, err = wf.Send(ctx, alice, bob, "invité", "")
	assert.ErrorIs(t, err, contacts.ErrInvalidReason)

	_, err = wf.Send(ctx, alice, bob, models.ReasonMeetup, "")
	require.NoError(t, err)
	_, err = wf.Send(ctx, alice, bob, models.ReasonMeetup, "encore")
	assert.ErrorIs(t, err, contacts.ErrPendingExists)
}

func TestAcceptCreatesDeterministicConversation(t *testing.T) {
	wf, n, store := newWorkflow(t)
	ctx := context.Background()

	req, err := wf.Send(ctx, alice, bob, models.ReasonTravelAdvice, "")
	require.NoError(t, err)

	changed, conv, err := wf.Accept(ctx, req.ID, bob)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, conv)
	assert.Equal(t, models.PairConversationID(alice.ID, bob.ID), conv.ID)
	assert.True(t, conv.HasParticipant(alice.ID))
	assert.True(t, conv.HasParticipant(bob.ID))

	// welcome system message seeded in the pair log
	doc, err := store.Read(ctx, "messages_"+conv.ID)
	require.NoError(t, err)
	messages := docstore.DecodeList[models.Message]("messages_"+conv.ID, doc.Value)
	require.Len(t, messages, 1)
	assert.Equal(t, models.MessageSystem, messages[0].Kind)

	// requester learns about the acceptance
	list, err := n.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationContactAccepted, list[0].Type)
	assert.Equal(t, conv.ID, list[0].ConversationID)
}

func TestAcceptTwiceIsSilentNoOp(t *testing.T) {
	wf, _, _ := newWorkflow(t)
	ctx := context.Background()

	req, err := wf.Send(ctx, alice, bob, models.ReasonTravelAdvice, "")
	require.NoError(t, err)

	changed, _, err := wf.Accept(ctx, req.ID, bob)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, conv, err := wf.Accept(ctx, req.ID, bob)
	require.NoError(t, err)
	assert.False(t, changed, "terminal state must not transition again")
	assert.Nil(t, conv)
}

func TestDeclineTerminalAndOwnerChecks(t *testing.T) {
	wf, _, _ := newWorkflow(t)
	ctx := context.Background()

	req, err := wf.Send(ctx, alice, bob, models.ReasonTravelAdvice, "")
	require.NoError(t, err)

	// only the recipient may answer
	_, _, err = wf.Accept(ctx, req.ID, alice)
	assert.ErrorIs(t, err, contacts.ErrNotRecipient)

	changed, err := wf.Decline(ctx, req.ID, bob)
	require.NoError(t, err)
	assert.True(t, changed)

	// declined is terminal: a later accept changes nothing
	changed2, conv, err := wf.Accept(ctx, req.ID, bob)
	require.NoError(t, err)
	assert.False(t, changed2)
	assert.Nil(t, conv)

	list, err := wf.ListFor(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ContactDeclined, list[0].Status)
}

func TestPendingForCountsOnlyInbound(t *testing.T) {
	wf, _, _ := newWorkflow(t)
	ctx := context.Background()

	_, err := wf.Send(ctx, alice, bob, models.ReasonTravelAdvice, "")
	require.NoError(t, err)

	pending, err := wf.PendingFor(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	pending, err = wf.PendingFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, pending, "outbound requests do not count")
}
