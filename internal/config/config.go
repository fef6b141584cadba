package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "vCard Editor"
	AppID          = "com.github.tartampluch.vcard-editor"
	BinaryName     = "vcard-editor"
	LogFileName    = "app.log"
	ConfigFileName = "config.toml"
	ConfigDirName  = "vcard-editor"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the settings file.
	FilePermUserRW fs.FileMode = 0600

	// FilePermShared represents -rw-r--r--.
	// Used for contact files and exported artifacts the user may share.
	FilePermShared fs.FileMode = 0644

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion  = "version"
	FlagDebug    = "debug"
	FlagFile     = "file"
	FlagConfig   = "config"
	FlagBackup   = "backup"
	FlagLang     = "lang"
	FlagFilter   = "filter"
	FlagRaw      = "raw"
	FlagFN       = "fn"
	FlagGiven    = "given"
	FlagFamily   = "family"
	FlagAddl     = "additional"
	FlagTitle    = "title"
	FlagPhone    = "phone"
	FlagEmail    = "email"
	FlagURL      = "url"
	FlagForce    = "force"
	FlagShortF   = "f"
	FlagShortC   = "c"
	FlagShortFlt = "F"
	FlagReminder = "reminder"
	FlagPort     = "port"
	FlagInterval = "interval"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging"
	FlagDescFile    = "Contact file (.vcf) to edit"
	FlagDescConfig  = "Settings file path"
	FlagDescBackup  = "Keep a <file>.old copy before overwriting"
	FlagDescLang    = "Output language (en, fr)"
	FlagDescFilter  = "Only show contacts whose name contains this text"
	FlagDescRaw     = "Print the vCard text instead of a summary"
	FlagDescFN      = "Formatted name"
	FlagDescGiven   = "Given name"
	FlagDescFamily  = "Family name"
	FlagDescAddl    = "Additional (middle) names"
	FlagDescTitle   = "Job title"
	FlagDescPhone   = "Phone slot=value (slots: home, cell, work, fax, pager, voice, video, text)"
	FlagDescEmail   = "Email slot=value (slots: internet, home, work)"
	FlagDescURL     = "Website slot=value (slots: home, work)"
	FlagDescForce   = "Overwrite an existing settings file"
	FlagDescRemind  = "Add an alarm to each event (ISO 8601 duration, e.g. -P1D)"
	FlagDescPort    = "Local port of the calendar feed"
	FlagDescInterv  = "How often the contact file is re-read"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Settings Defaults
// -----------------------------------------------------------------------------

const (
	DefaultLanguage  = "en"
	DefaultLogLevel  = "info"
	DefaultOverwrite = true

	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// SupportedLanguages defines the list of available output languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Standards: vCard
// -----------------------------------------------------------------------------

const (
	VCardBegin       = "BEGIN:VCARD"
	VCardEnd         = "END:VCARD"
	VCardVersion     = "3.0"
	VCardUIDPrefix   = "urn:uuid:"
	VCardBDAY        = "BDAY"
	VCardEncoding    = "ENCODING"
	VCardEncodingB   = "b"
	VCardEncodingB64 = "BASE64"
	VCardDataScheme  = "data:"
	VCardBase64Tag   = ";base64,"

	BackupSuffix = ".old"

	// ChunkLineOffset converts a zero-based line index into the 1-based
	// numbering used in reports.
	ChunkLineOffset = 1
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//vCard Editor//Birthdays//EN"
	ICalCalName = "Birthdays"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "vcard-editor"

	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"
	PropAction     = "ACTION"
	PropTrigger    = "TRIGGER"
	PropDesc       = "DESCRIPTION"

	DefaultICalRefresh = 24 * time.Hour
	DTStampResolution  = 24 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Calendar Feed (HTTP)
// -----------------------------------------------------------------------------

const (
	LocalhostBindAddr   = "127.0.0.1"
	DefaultFeedPort     = "18080"
	DefaultFeedRefresh  = 15 * time.Minute
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	RouteRoot           = "/"
	AddrSeparator       = ":"
	ChannelBufferSize   = 1
	CacheControlPrivate = "private, no-cache"

	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar = "text/calendar; charset=utf-8"
	MimeNoSniff      = "nosniff"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`

	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	DefaultLeapYear = 2000 // Leap year fallback for dates like --02-29

	// UID Generation
	UIDSalt         = "vcard-editor-v1-"
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtJPEG  = ".jpg"
	ExtPNG   = ".png"
	ExtGIF   = ".gif"
	ExtBMP   = ".bmp"

	// SlotAssignSeparator splits "slot=value" CLI arguments.
	SlotAssignSeparator = "="
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrIO             = "file access failed"
	ErrParse          = "record could not be decoded"
	ErrInvalidOp      = "invalid operation"
	ErrNoPath         = "no file name has been set"
	ErrReadFile       = "failed to read contact file"
	ErrWriteFile      = "failed to write contact file"
	ErrBackupFile     = "failed to back up contact file"
	ErrEncodeCard     = "failed to encode vCard"
	ErrUnterminated   = "record is missing END:VCARD"
	ErrNoBegin        = "record is missing BEGIN:VCARD"
	ErrNoPhoto        = "contact has no photo"
	ErrPhotoDecode    = "failed to decode photo"
	ErrIndexRange     = "contact index out of range"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrDateParse      = "unable to parse date"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrConfigDir      = "could not determine user config dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrSettingsOpen   = "open settings"
	ErrSettingsParse  = "parse settings"
	ErrSettingsWrite  = "write settings"
	ErrSettingsExists = "settings file already exists"
	ErrLogLevel       = "unsupported log level"
	ErrLanguage       = "unsupported language"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrSlotFormat     = "expected slot=value"
	ErrSlotUnknown    = "unknown slot"
	ErrIndexArg       = "contact index must be a number"
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrWriteResp      = "failed to write response body"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Birthday: %s"
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
	FallbackName         = "Unknown"

	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped"
	MsgLoadStarted    = "Loading contacts"
	MsgLoadDone       = "Contacts loaded"
	MsgSkippedChunk   = "Skipping malformed vCard"
	MsgStrayLines     = "Ignoring text before BEGIN:VCARD"
	MsgMissingVersion = "vCard has no VERSION, assuming 3.0"
	MsgSaveStarted    = "Saving contacts"
	MsgSaveDone       = "Contacts saved"
	MsgBackupCreated  = "Backup created"
	MsgContactsDel    = "Contacts deleted"
	MsgFilterApplied  = "Filter applied"
	MsgMergeApplied   = "Pending edit merged"
	MsgContactAdded   = "Empty contact added"
	MsgPhotoReplaced  = "Photo replaced"
	MsgPhotoSaved     = "Photo written"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgGenSuccess     = "Calendar generation successful"
	MsgBdayToday      = "Birthday today"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgFeedRefresh    = "Refreshing calendar feed"
	MsgSettingsLoaded = "Settings loaded"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyRootShort      = "cmd_root_short"
	TKeyListShort      = "cmd_list_short"
	TKeyShowShort      = "cmd_show_short"
	TKeySetShort       = "cmd_set_short"
	TKeyAddShort       = "cmd_add_short"
	TKeyDeleteShort    = "cmd_delete_short"
	TKeyPhotoShort     = "cmd_photo_short"
	TKeyPhotoSetShort  = "cmd_photo_set_short"
	TKeyPhotoExpShort  = "cmd_photo_export_short"
	TKeyCalendarShort  = "cmd_calendar_short"
	TKeyInitCfgShort   = "cmd_init_config_short"
	TKeyServeShort     = "cmd_serve_short"
	TKeyMsgServing     = "msg_serving" // Requires URL
	TKeyColIndex       = "col_index"
	TKeyColName        = "col_name"
	TKeyColPhone       = "col_phone"
	TKeyColEmail       = "col_email"
	TKeyLblFN          = "lbl_formatted_name"
	TKeyLblGiven       = "lbl_given_name"
	TKeyLblFamily      = "lbl_family_name"
	TKeyLblAddl        = "lbl_additional_names"
	TKeyLblTitle       = "lbl_title"
	TKeyLblPhone       = "lbl_phone"
	TKeyLblEmail       = "lbl_email"
	TKeyLblURL         = "lbl_url"
	TKeyLblAddress     = "lbl_address"
	TKeyLblPhoto       = "lbl_photo"
	TKeyMsgSaved       = "msg_saved"          // Requires File
	TKeyMsgDeleted     = "msg_deleted"        // Requires Count
	TKeyMsgAdded       = "msg_added"          // Requires Index
	TKeyMsgUpdated     = "msg_updated"        // Requires Index
	TKeyMsgCalendar    = "msg_calendar"       // Requires Count, File
	TKeyMsgPhotoSet    = "msg_photo_set"      // Requires Index
	TKeyMsgPhotoSaved  = "msg_photo_saved"    // Requires File
	TKeyMsgConfigDone  = "msg_config_written" // Requires File
	TKeyMsgNoContacts  = "msg_no_contacts"
	TKeyWarnSkipped    = "warn_skipped" // Requires Line, Error
	TKeyErrNoFile      = "err_no_file"
	TKeyErrFailed      = "err_failed"
	TKeyPhotoPresent   = "photo_present"
	TKeyPhotoAbsent    = "photo_absent"
	TKeyEvtSummary     = "event_summary"       // Requires Name
	TKeyEvtSummaryAge  = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBrth = "event_summary_birth" // Requires Name
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyBackup    = "backup"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyLine      = "line"
	LogKeyIndex     = "index"
	LogKeyFilter    = "filter"
	LogKeyCount     = "count"
	LogKeySkipped   = "skipped"
	LogKeyTotal     = "total"
	LogKeyDeleted   = "deleted"
	LogKeyDirty     = "dirty"
	LogKeyName      = "name"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyFound     = "birthdays_found"
	LogKeySizeBytes = "size_bytes"
	LogKeyDuration  = "duration_ms"
	LogKeyOverwrite = "overwrite"
	LogKeyToday     = "today"
	LogKeyDOB       = "dob"
	LogKeyPort      = "port"
	LogKeyETag      = "etag"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain       = "main"
	CompCLI        = "cli"
	CompCard       = "card"
	CompRepository = "repository"
	CompCalendar   = "calendar"
	CompSettings   = "settings"
	CompI18n       = "i18n"
	CompFeed       = "feed"
)
