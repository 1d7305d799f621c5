package event

import "github.com/gozcu/camera-event-writer/pkg/jsonfast"

// Detection field names in the stored blob follow the producer-facing
// schema so downstream readers see the same keys the cameras publish.
const (
	keyDetectedObjects = "detectedObjects"
	keyClassName       = "className"
	keyConfidence      = "confidence"
	keyPhotoURL        = "photoUrl"
	keyCoordinateX     = "coordinateX"
	keyCoordinateY     = "coordinateY"
	keyRegionID        = "regionID"
)

// EncodeDetections renders the JSONB blob stored in the event_data column:
// {"detectedObjects":[...]} plus any optional frame metadata.
func (e *CameraEvent) EncodeDetections() []byte {
	b := jsonfast.New(128 + 160*len(e.Detections))
	b.BeginObject()
	b.BeginArrayField(keyDetectedObjects)
	for i := range e.Detections {
		d := &e.Detections[i]
		b.BeginObject()
		b.AddIntField(keyClassName, d.ClassID)
		b.AddIntField(keyConfidence, d.Confidence)
		b.AddStringField(keyPhotoURL, d.PhotoURL)
		b.AddIntField(keyCoordinateX, d.CoordinateX)
		b.AddIntField(keyCoordinateY, d.CoordinateY)
		if d.RegionIDs != nil {
			b.AddIntArrayField(keyRegionID, d.RegionIDs)
		}
		b.EndObject()
	}
	b.EndArray()
	if e.Meta.FrameNumber != nil {
		b.AddIntField("frame_number", *e.Meta.FrameNumber)
	}
	if e.Meta.ProcessingTimeMS != nil {
		b.AddIntField("processing_time_ms", *e.Meta.ProcessingTimeMS)
	}
	if e.Meta.StreamLagMS != nil {
		b.AddIntField("stream_lag_ms", *e.Meta.StreamLagMS)
	}
	b.EndObject()

	// Copy out: the builder buffer is reusable.
	out := make([]byte, len(b.Bytes()))
	copy(out, b.Bytes())
	return out
}
