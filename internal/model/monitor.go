package model

// MonitorRow is one live-attempt presence row, upserted on heartbeat and
// purged once the heartbeat goes stale. Timestamps are unix milliseconds.
type MonitorRow struct {
	SessionID     string `json:"session_id"`
	StudentName   string `json:"student_name"`
	StudentID     string `json:"student_id"`
	ExamVersion   string `json:"exam_version"`
	StartTime     int64  `json:"start_time"`
	LastHeartbeat int64  `json:"last_heartbeat"`
	Progress      string `json:"progress"`
}

// HeartbeatRequest is the payload for a presence heartbeat.
type HeartbeatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Name      string `json:"name"`
	ID        string `json:"id"`
	Version   string `json:"version"`
	Progress  string `json:"progress"`
	StartTime int64  `json:"startTime,omitempty"`
}
