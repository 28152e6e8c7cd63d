package config

// Display constants shared by the badge projection and the chat previews.
// The color table follows the badge precedence one-to-one.
const (
	MessagePreviewLength = 50

	BadgeColorSOS    = "red"
	BadgeColorExpert = "purple"
	BadgeColorSocial = "blue"
	BadgeColorNone   = "gray"

	BadgeHexSOS    = "#e74c3c"
	BadgeHexExpert = "#9b59b6"
	BadgeHexSocial = "#3498db"
	BadgeHexNone   = "#6c757d"

	BadgeBackgroundSOS    = "#fee"
	BadgeBackgroundExpert = "#f8f0ff"
	BadgeBackgroundSocial = "#e3f2fd"
	BadgeBackgroundNone   = "#f8f9fa"
)
