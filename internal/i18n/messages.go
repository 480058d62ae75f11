package i18n

// Message IDs present in every locale file.
const (
	MsgErrorTitle             = "notif_error_title"
	MsgContactsLoadFailed     = "notif_contacts_load_failed"
	MsgNoBirthdaysTitle       = "notif_no_birthdays_title"
	MsgNoBirthdays            = "notif_no_birthdays"
	MsgBirthdaysExportedTitle = "notif_birthdays_exported_title"
	MsgBirthdaysExported      = "notif_birthdays_exported"
	MsgStatusUpdatedTitle     = "notif_status_updated_title"
	MsgStatusConnected        = "notif_status_connected"
	MsgStatusDisconnected     = "notif_status_disconnected"
	MsgRefreshFailedTitle     = "notif_refresh_failed_title"
	MsgDisconnectedTitle      = "notif_disconnected_title"
	MsgDisconnected           = "notif_disconnected"
	MsgDisconnectFailedTitle  = "notif_disconnect_failed_title"
	MsgLoginRequired          = "notif_login_required"
	MsgPortalOpenedTitle      = "notif_portal_opened_title"
	MsgPortalOpened           = "notif_portal_opened"
	MsgPortalFailed           = "notif_portal_failed"
	MsgImportDoneTitle        = "notif_import_done_title"
	MsgImportDone             = "notif_import_done"
	MsgImportFailed           = "notif_import_failed"
	MsgCampaignStartedTitle   = "notif_campaign_started_title"
	MsgCampaignStarted        = "notif_campaign_started"
	MsgCampaignFailed         = "notif_campaign_failed"
	MsgHandoffMissing         = "notif_handoff_missing"
	MsgNotConnected           = "notif_not_connected"
	MsgBadRequest             = "notif_bad_request"
	MsgEventSummary           = "event_summary"
	MsgCalendarMonthLabel     = "calendar_month_label"
)
