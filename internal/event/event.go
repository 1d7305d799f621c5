// Package event holds the normalized representation of one camera frame
// event and its detected objects. The types are pure data: they are created
// by the transformer, carried through the pipeline, and persisted by the
// bulk loader.
package event

import "time"

// Detection is one detected object inside a camera frame event. A detection
// has no identity of its own; it is meaningful only nested in a CameraEvent.
type Detection struct {
	ClassID     int
	Confidence  int // percent, always within [0,100]
	PhotoURL    string
	CoordinateX int
	CoordinateY int
	RegionIDs   []int // nil when the producer sent none
}

// FrameMeta carries optional producer diagnostics persisted alongside the
// detections. Nil pointers mean the producer did not send the field.
type FrameMeta struct {
	FrameNumber      *int
	ProcessingTimeMS *int
	StreamLagMS      *int
}

// CameraEvent is one validated frame event. EventTime is never in the
// future relative to validation time. Detections may be empty.
type CameraEvent struct {
	CameraID   int
	EventTime  time.Time
	Detections []Detection
	Meta       FrameMeta
}
