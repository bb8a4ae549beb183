package models

// SubmitRequest is the POST /api/submit payload sent by a trap scanner.
// sha256 is the hex HMAC of trap_id+trap_type+gps+egg_count.
type SubmitRequest struct {
	TrapID   string `json:"trap_id"`
	TrapType string `json:"trap_type"`
	GPS      string `json:"gps"`
	EggCount int    `json:"egg_count"`
	Barangay string `json:"barangay,omitempty"`
	SHA256   string `json:"sha256"`
}

// SubmitResponse is returned by POST /api/submit.
type SubmitResponse struct {
	Success     bool  `json:"success"`
	SHA256Valid bool  `json:"sha256_valid"`
	ID          int64 `json:"id"`
}

// IngestionEntry is one element of GET /api/ingestion.
type IngestionEntry struct {
	ID          int64  `json:"id"`
	Timestamp   string `json:"timestamp"`
	TrapID      string `json:"trap_id"`
	TrapType    string `json:"trap_type"`
	GPS         string `json:"gps"`
	EggCount    int    `json:"egg_count"`
	Barangay    string `json:"barangay"`
	SHA256Valid bool   `json:"sha256_valid"`
}

// EscalateResponse is returned by POST /api/escalate when an alert was sent
// or deliberately skipped.
type EscalateResponse struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Contact  string `json:"contact,omitempty"`
	Zone     string `json:"zone,omitempty"`
	TrapID   string `json:"trap_id,omitempty"`
	EggCount int    `json:"egg_count"`
	AlertID  string `json:"alert_id,omitempty"`
}

// ErrorResponse is the JSON error envelope used by every failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
