package backend

import (
	"github.com/parthubhe/DeepFakeStudio/internal/mask"
)

// ClipType classifies how a clip participates in processing.
type ClipType string

const (
	// ClipTypeNormal clips carry at least one swap pass and accept masks.
	ClipTypeNormal ClipType = "Normal"
	// ClipTypeNoChar clips pass through untouched; they never receive masks
	// and are read-only in the editor.
	ClipTypeNoChar ClipType = "NoChar"
)

// ClipStatus is the backend-reported processing state of a clip.
type ClipStatus string

const (
	ClipStatusPending ClipStatus = "pending"
	ClipStatusDone    ClipStatus = "done"
)

// Pass is one stage of a multi-pass job targeting a single character.
type Pass struct {
	Pass      int    `json:"pass"`
	Character string `json:"character"`
	Mask      string `json:"mask,omitempty"`
}

// ClipState describes one clip of a project as reported by the backend.
// The console holds a read-mostly cached copy refreshed by the status poller.
type ClipState struct {
	ClipID     string         `json:"clip_id"`
	Path       string         `json:"path"`
	Start      int            `json:"start,omitempty"`
	End        int            `json:"end,omitempty"`
	Type       ClipType       `json:"type"`
	Status     ClipStatus     `json:"status"`
	Actions    []Pass         `json:"actions"`
	MaskPoints *mask.PointSet `json:"mask_points,omitempty"`
}

// Editable reports whether the annotation editor may modify this clip.
func (c ClipState) Editable() bool {
	return c.Type != ClipTypeNoChar
}

// MultiPass reports whether the clip exposes pass navigation.
func (c ClipState) MultiPass() bool {
	return len(c.Actions) > 1
}

// HasPass reports whether the clip's actions include the given 1-based pass.
func (c ClipState) HasPass(pass int) bool {
	for _, action := range c.Actions {
		if action.Pass == pass {
			return true
		}
	}
	return false
}

// Equal compares two clip states field by field, actions included.
func (c ClipState) Equal(other ClipState) bool {
	if c.ClipID != other.ClipID || c.Path != other.Path ||
		c.Start != other.Start || c.End != other.End ||
		c.Type != other.Type || c.Status != other.Status ||
		len(c.Actions) != len(other.Actions) {
		return false
	}
	for i := range c.Actions {
		if c.Actions[i] != other.Actions[i] {
			return false
		}
	}
	return true
}

// Project is the backend's job profile for one video.
type Project struct {
	VideoID string      `json:"video_id"`
	FPS     int         `json:"fps"`
	Clips   []ClipState `json:"clips"`
}

// PendingClips returns the identifiers of clips not yet done.
func (p Project) PendingClips() []string {
	var pending []string
	for _, clip := range p.Clips {
		if clip.Status != ClipStatusDone {
			pending = append(pending, clip.ClipID)
		}
	}
	return pending
}

// ClipsEqual compares two clip slices structurally.
func ClipsEqual(a, b []ClipState) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// GlobalStatus is the backend's process-wide job state, polled every tick.
// LastCompleted is an edge marker: its value changes exactly when a job
// finishes, and consumers must dedup notifications on the value itself.
type GlobalStatus struct {
	IsProcessing   bool     `json:"is_processing"`
	CurrentClip    string   `json:"current_clip,omitempty"`
	CurrentPass    int      `json:"current_pass"`
	TotalClips     int      `json:"total_clips"`
	ProcessedClips int      `json:"processed_clips"`
	Queue          []string `json:"queue"`
	LastCompleted  string   `json:"last_completed,omitempty"`
}

// QueueSize reports the number of queued clip identifiers.
func (s GlobalStatus) QueueSize() int {
	return len(s.Queue)
}

// Equal compares two status payloads structurally. Polling replaces the held
// copy only when this returns false, so unchanged payloads delivered every
// tick cause no downstream churn.
func (s GlobalStatus) Equal(other GlobalStatus) bool {
	if s.IsProcessing != other.IsProcessing ||
		s.CurrentClip != other.CurrentClip ||
		s.CurrentPass != other.CurrentPass ||
		s.TotalClips != other.TotalClips ||
		s.ProcessedClips != other.ProcessedClips ||
		s.LastCompleted != other.LastCompleted ||
		len(s.Queue) != len(other.Queue) {
		return false
	}
	for i := range s.Queue {
		if s.Queue[i] != other.Queue[i] {
			return false
		}
	}
	return true
}

// CharacterStatus reports which custom character references are uploaded.
type CharacterStatus struct {
	Char1 bool `json:"char1"`
	Char2 bool `json:"char2"`
}

// FrameResponse carries the backend-relative URL of an extracted frame image.
type FrameResponse struct {
	URL string `json:"url"`
}

// StitchResponse carries the backend-relative URL of the stitched final video.
type StitchResponse struct {
	URL string `json:"url"`
}

// QueueAllResult is the structured response from queueing a whole project.
type QueueAllResult struct {
	Status  string   `json:"status"`
	Count   int      `json:"count,omitempty"`
	Message string   `json:"message,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// UploadResult acknowledges a character reference upload.
type UploadResult struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}
