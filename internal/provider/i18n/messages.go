package i18n

import "golang.org/x/text/language"

// Message keys.
const (
	KeyAuthorizeTitle   = "authorize.title"
	KeyAuthorizePrompt  = "authorize.prompt"
	KeyAuthorizeGrant   = "authorize.grant"
	KeyAuthorizeDeny    = "authorize.deny"
	KeySuccessTitle     = "authorize.success.title"
	KeySuccessBody      = "authorize.success.body"
	KeySuccessVerifier  = "authorize.success.verifier"
	KeyFailureTitle     = "authorize.failure.title"
	KeyFailureInvalid   = "authorize.failure.invalid"
	KeyFailureDenied    = "authorize.failure.denied"
	KeyFailureAlready   = "authorize.failure.already_authorized"
	KeyFailureCallback  = "authorize.failure.invalid_callback"
	KeyFailureInternal  = "authorize.failure.internal"
	KeyTokensTitle      = "tokens.title"
	KeyTokensEmpty      = "tokens.empty"
	KeyTokensRevoke     = "tokens.revoke"
	KeyTokensIssued     = "tokens.issued"
	KeyRevokeFlash      = "revoke.flash"
	KeyPermissionPrefix = "permission."
)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		KeyAuthorizeTitle:  "Authorize access to your account",
		KeyAuthorizePrompt: "The application %s is requesting access to your account. Check the permissions you want to grant.",
		KeyAuthorizeGrant:  "Grant Access",
		KeyAuthorizeDeny:   "Deny",
		KeySuccessTitle:    "Access granted",
		KeySuccessBody:     "You have granted %s access to your account.",
		KeySuccessVerifier: "Enter this verification code in the application: %s",
		KeyFailureTitle:    "Authorization failed",
		KeyFailureInvalid:  "The authorization token is not valid.",
		KeyFailureDenied:   "You have denied application %s access to your account.",
		KeyFailureAlready:  "This authorization request has already been approved.",
		KeyFailureCallback: "The application supplied an invalid callback address.",
		KeyFailureInternal: "Something went wrong. Please try again later.",
		KeyTokensTitle:     "My authorized applications",
		KeyTokensEmpty:     "You have not authorized any applications.",
		KeyTokensRevoke:    "Revoke Access",
		KeyTokensIssued:    "Authorized %s",
		KeyRevokeFlash:     "You have successfully revoked the token for %s.",

		KeyPermissionPrefix + "allow_read_prefs":  "read your user preferences",
		KeyPermissionPrefix + "allow_write_prefs": "modify your user preferences",
		KeyPermissionPrefix + "allow_write_diary": "create diary entries, comments and make friends",
		KeyPermissionPrefix + "allow_write_api":   "modify the map",
		KeyPermissionPrefix + "allow_read_gpx":    "read your private GPS traces",
		KeyPermissionPrefix + "allow_write_gpx":   "upload GPS traces",
		KeyPermissionPrefix + "allow_write_notes": "modify notes",
	},
	language.German: {
		KeyAuthorizeTitle:  "Zugriff auf dein Benutzerkonto erlauben",
		KeyAuthorizePrompt: "Die Anwendung %s möchte auf dein Benutzerkonto zugreifen. Wähle die Berechtigungen aus, die du erteilen möchtest.",
		KeyAuthorizeGrant:  "Zugriff erlauben",
		KeyAuthorizeDeny:   "Ablehnen",
		KeySuccessTitle:    "Zugriff erlaubt",
		KeySuccessBody:     "Du hast %s den Zugriff auf dein Benutzerkonto erlaubt.",
		KeySuccessVerifier: "Gib diesen Bestätigungscode in der Anwendung ein: %s",
		KeyFailureTitle:    "Autorisierung fehlgeschlagen",
		KeyFailureInvalid:  "Das Autorisierungs-Token ist ungültig.",
		KeyFailureDenied:   "Du hast der Anwendung %s den Zugriff auf dein Benutzerkonto verweigert.",
		KeyFailureAlready:  "Diese Autorisierungsanfrage wurde bereits genehmigt.",
		KeyFailureCallback: "Die Anwendung hat eine ungültige Rückrufadresse angegeben.",
		KeyFailureInternal: "Etwas ist schiefgelaufen. Bitte versuche es später erneut.",
		KeyTokensTitle:     "Meine autorisierten Anwendungen",
		KeyTokensEmpty:     "Du hast noch keine Anwendungen autorisiert.",
		KeyTokensRevoke:    "Zugriff entziehen",
		KeyTokensIssued:    "Autorisiert am %s",
		KeyRevokeFlash:     "Du hast den Zugriff für %s erfolgreich entzogen.",

		KeyPermissionPrefix + "allow_read_prefs":  "deine Benutzereinstellungen lesen",
		KeyPermissionPrefix + "allow_write_prefs": "deine Benutzereinstellungen ändern",
		KeyPermissionPrefix + "allow_write_diary": "Blogeinträge und Kommentare schreiben und Freunde hinzufügen",
		KeyPermissionPrefix + "allow_write_api":   "die Karte bearbeiten",
		KeyPermissionPrefix + "allow_read_gpx":    "deine privaten GPS-Tracks lesen",
		KeyPermissionPrefix + "allow_write_gpx":   "GPS-Tracks hochladen",
		KeyPermissionPrefix + "allow_write_notes": "Hinweise bearbeiten",
	},
}
