// Package texts holds the user-facing French strings emitted by the
// engine: system messages, notification bodies, previews. Keeping them in
// one table keeps the workflows free of literals and leaves room for more
// languages later.
package texts

import "fmt"

const (
	ContactRequestTitle  = "Nouvelle demande de contact"
	ContactAcceptedTitle = "Demande acceptée !"
	ChatMessageTitle     = "Nouveau message"
	SOSChatTitle         = "Nouveau message dans le chat SOS"
	SOSResponseTitle     = "Nouvelle proposition d'aide"

	RoomNameGeneral = "💬 Discussion générale"
	RoomNameSOS     = "🆘 Aide d'urgence"
	RoomNameTravel  = "✈️ Conseils voyage"

	SOSRoomWelcome = "Canal d'urgence activé. Décrivez votre situation, les aidants vont vous répondre."
)

func ContactRequestBody(pseudo string) string {
	return fmt.Sprintf("%s souhaite échanger avec vous sur vos voyages.", pseudo)
}

func ContactAcceptedBody(pseudo string) string {
	return fmt.Sprintf("%s a accepté votre demande d'échange. Vous pouvez maintenant discuter !", pseudo)
}

func ContactWelcome(pseudo string) string {
	return fmt.Sprintf("🎉 %s a accepté votre demande ! Vous pouvez maintenant échanger librement.", pseudo)
}

func ConversationTitle(pseudo string) string {
	return fmt.Sprintf("Chat avec %s", pseudo)
}

func SOSChatBody(pseudo string) string {
	return fmt.Sprintf("%s a envoyé un message dans votre demande SOS.", pseudo)
}

func SOSDefaultOffer(pseudo string) string {
	return fmt.Sprintf("%s propose son aide !", pseudo)
}

func SOSResponseBody(pseudo string) string {
	return fmt.Sprintf("%s propose de vous aider sur votre demande SOS.", pseudo)
}

func JoinBody(pseudo string) string {
	return fmt.Sprintf("%s a rejoint la conversation", pseudo)
}

func ExpertRoomName(pseudo string) string {
	return fmt.Sprintf("💼 Chat avec %s", pseudo)
}

func ExpertRoomWelcome(pseudo string) string {
	return fmt.Sprintf("Conversation privée avec %s. Posez vos questions !", pseudo)
}

// Preview truncates a message body for notification texts. Counts runes so
// multi-byte text never splits.
func Preview(pseudo, message string, max int) string {
	r := []rune(message)
	if len(r) > max {
		message = string(r[:max]) + "..."
	}
	return fmt.Sprintf("%s: %s", pseudo, message)
}

func SOSAlertBody(pseudo, category, message string) string {
	return fmt.Sprintf("🆘 SOS CRITIQUE — %s (%s) : %s", pseudo, category, message)
}
