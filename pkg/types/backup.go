package types

// BackupSchemaVersion is the current manifest schema version. Import
// rejects any manifest whose version does not match exactly.
const BackupSchemaVersion = 1

// Settings keys stored in the kv table.
const (
	KVSelectedCalendarID = "selectedCalendarId"
	KVGoogleClientID     = "googleClientId"
	KVGoogleOAuthScope   = "googleOAuthScope"
	KVStorageFolder      = "storageFolder"
)

// SafeKVKeys lists the settings keys eligible for backup export. Credentials
// and tokens are deliberately excluded, as is the folder grant, which is
// meaningless on another machine.
var SafeKVKeys = []string{
	KVSelectedCalendarID,
	KVGoogleClientID,
}

// BackupData holds the full contents of every entity table plus the
// allow-listed settings.
type BackupData struct {
	Clients     []*Client      `json:"clients"`
	Dogs        []*Dog         `json:"dogs"`
	Visits      []*Visit       `json:"visits"`
	EventLinks  []*EventLink   `json:"eventLinks"`
	VisitPhotos []*VisitPhoto  `json:"visitPhotos"`
	KV          map[string]any `json:"kv"`
}

// BackupAppInfo identifies the exporting application.
type BackupAppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// BackupManifest is the portable backup file shape.
type BackupManifest struct {
	SchemaVersion int           `json:"schemaVersion"`
	ExportedAt    string        `json:"exportedAt"`
	App           BackupAppInfo `json:"app"`
	Data          BackupData    `json:"data"`
}
