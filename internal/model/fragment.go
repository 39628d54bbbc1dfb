package model

import "time"

// FragmentStatus is the per-fragment state, independent of the session state.
type FragmentStatus string

const (
	FragmentUploaded    FragmentStatus = "uploaded"
	FragmentTranscribed FragmentStatus = "transcribed"
	FragmentError       FragmentStatus = "error"
)

// Fragment is one discrete unit of uploaded audio belonging to a meeting.
// Identity is (MeetingID, SequenceNumber); sequence numbers are caller-supplied
// and are not required to be contiguous. Assembly order is sequence-number
// order, never arrival order.
type Fragment struct {
	ID             string         `json:"id"`
	MeetingID      string         `json:"meeting_id"`
	SequenceNumber int            `json:"sequence_number"`
	StorageRef     string         `json:"storage_ref"`
	Size           int64          `json:"size"`
	ContentType    string         `json:"content_type"`
	Status         FragmentStatus `json:"status"`
	TranscriptText *string        `json:"transcript_text,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
