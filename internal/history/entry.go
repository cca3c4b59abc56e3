package history

import "gorm.io/plugin/soft_delete"

// Entry is one recorded evaluation.
type Entry struct {
	ID int64 `json:"id" gorm:"primarykey"`
	// SessionID groups the evaluations of one shell or server process.
	SessionID string `json:"session_id" gorm:"index:idx_session"`
	// Fingerprint is the BLAKE3 hash of Program, hex encoded.
	Fingerprint string `json:"fingerprint" gorm:"index:idx_fingerprint"`
	Program     string `json:"program"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	// ErrorCode is the code of the failure, empty on success.
	ErrorCode string `json:"error_code,omitempty"`
	// CreatedAt is a Unix timestamp in nanoseconds.
	CreatedAt int64 `json:"created_at" gorm:"index:idx_created_at"`
	/* 0 false 1 true */
	Deleted soft_delete.DeletedAt `json:"-" gorm:"softDelete:flag;default:0"`
}

func (Entry) TableName() string {
	return "evaluation"
}

// ProgramCount is the number of recorded evaluations of one program.
type ProgramCount struct {
	Fingerprint string
	Program     string
	Count       int64
}
