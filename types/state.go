package types

// IngestionState is the lifecycle state of the single document.
type IngestionState string

// Ingestion states. Ready is reachable only through Uploading -> Uploaded
// -> Indexing; Error is reachable from Uploading or Indexing; Clearing
// always resolves to Empty on success.
const (
	StateEmpty     IngestionState = "empty"
	StateSelected  IngestionState = "selected"
	StateUploading IngestionState = "uploading"
	StateUploaded  IngestionState = "uploaded"
	StateIndexing  IngestionState = "indexing"
	StateReady     IngestionState = "ready"
	StateError     IngestionState = "error"
	StateClearing  IngestionState = "clearing"
)

// IsBusy returns true while a gateway call owned by the state is outstanding.
func (s IngestionState) IsBusy() bool {
	return s == StateUploading || s == StateIndexing || s == StateClearing
}

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel string

// Notice levels.
const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a short message surfaced to the user after an operation.
type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}
