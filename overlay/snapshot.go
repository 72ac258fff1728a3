package overlay

// Stats summarise the last few seconds of raw readings for the tooltip.
type Stats struct {
	FrameTimeMin float64 `json:"frame_time_min"`
	FrameTimeAvg float64 `json:"frame_time_avg"`
	FrameTimeMax float64 `json:"frame_time_max"`
	FPSMin       float64 `json:"fps_min"`
	FPSAvg       float64 `json:"fps_avg"`
	FPSMax       float64 `json:"fps_max"`
	Samples      int64   `json:"samples"`
	// ms of virtual time covered
	Span float64 `json:"span_ms"`
}

// Snapshot is everything a rendering sink needs for one frame.
type Snapshot struct {
	FrameTime      float64 `json:"frame_time"`
	FPS            float64 `json:"fps"`
	FrameTimeLabel string  `json:"frame_time_label"`
	FPSLabel       string  `json:"fps_label"`
	Visible        bool    `json:"visible"`
	Theme          Theme   `json:"theme"`
	Stats          Stats   `json:"stats"`
	// process CPU percent, filled in by the host
	CPU  float64 `json:"cpu"`
	Tick uint64  `json:"tick"`
}
