// Package transform converts raw stream records into validated camera events.
// It is tolerant of producer schema drift on input and strict on output: a
// malformed record or detection is logged and dropped, never propagated.
package transform

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gozcu/camera-event-writer/internal/event"
	"github.com/gozcu/camera-event-writer/internal/log"
	"github.com/gozcu/camera-event-writer/internal/message"
)

// Field synonym tables, ordered by priority. Multiple producer versions feed
// the same stream, so every target field accepts several source spellings.
// Extend the lists here when a producer changes its schema; the extraction
// code never needs to change.
var (
	cameraIDFields   = []string{"cameraID", "camera_id"}
	eventTimeFields  = []string{"eventDate", "event_time"}
	detectionsFields = []string{"detectedObjects"}

	classIDFields     = []string{"className", "class_name", "class_id"}
	confidenceFields  = []string{"confidence"}
	photoURLFields    = []string{"photoUrl", "photo_url"}
	coordinateXFields = []string{"coordinateX", "coordinate_x", "coord_x"}
	coordinateYFields = []string{"coordinateY", "coordinate_y", "coord_y"}
	regionIDFields    = []string{"regionID", "region_id", "region_ids"}
)

// timeLayouts tried in order for string-encoded timestamps
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Transformer turns batches of raw records into validated events. The clock
// is injectable so the future-timestamp check is testable.
type Transformer struct {
	now func() time.Time
	log *log.Logger
}

// New creates a transformer using the wall clock.
func New(logger *log.Logger) *Transformer {
	return &Transformer{now: time.Now, log: logger}
}

// NewWithClock creates a transformer with a custom clock.
func NewWithClock(clock func() time.Time, logger *log.Logger) *Transformer {
	return &Transformer{now: clock, log: logger}
}

// Transform converts every record in the batch that passes validation. The
// output order follows the input order. Transform never fails: bad records
// are skipped with a warning and the rest of the batch is processed.
func (t *Transformer) Transform(batch message.Batch) []event.CameraEvent {
	events := make([]event.CameraEvent, 0, len(batch.Records))

	for i := range batch.Records {
		rec := &batch.Records[i]
		ev, ok := t.transformRecord(rec)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	t.log.Debug("Transformed %d records into %d events", len(batch.Records), len(events))
	return events
}

// transformRecord builds one validated event from one raw record. Returns
// false when the record must be skipped.
func (t *Transformer) transformRecord(rec *message.Record) (event.CameraEvent, bool) {
	if len(rec.Fields) == 0 {
		t.log.Warn("Empty field map in record %s, skipping", rec.ID)
		return event.CameraEvent{}, false
	}

	cameraID, okID := lookupInt(rec.Fields, cameraIDFields)
	eventTime, okTime := lookupTime(rec.Fields, eventTimeFields)
	if !okID || cameraID <= 0 || !okTime {
		t.log.Warn("Record %s missing camera id or event time, skipping", rec.ID)
		return event.CameraEvent{}, false
	}
	if eventTime.After(t.now()) {
		t.log.Warn("Record %s has future event time %s, skipping", rec.ID, eventTime.Format(time.RFC3339))
		return event.CameraEvent{}, false
	}

	ev := event.CameraEvent{
		CameraID:   cameraID,
		EventTime:  eventTime,
		Detections: t.extractDetections(rec),
	}

	if v, ok := lookupInt(rec.Fields, []string{"frame_number"}); ok {
		ev.Meta.FrameNumber = &v
	}
	if v, ok := lookupInt(rec.Fields, []string{"processing_time_ms"}); ok {
		ev.Meta.ProcessingTimeMS = &v
	}
	if v, ok := lookupInt(rec.Fields, []string{"stream_lag_ms"}); ok {
		ev.Meta.StreamLagMS = &v
	}

	return ev, true
}

// extractDetections pulls the detections list out of a record. The list may
// arrive already decoded or as a JSON string; a string that fails to decode
// yields an empty list, not a dropped record. Records without a detections
// list fall back to the legacy single-detection format where the detection
// fields sit at the top level behind a has_detection flag.
func (t *Transformer) extractDetections(rec *message.Record) []event.Detection {
	raw, found := lookup(rec.Fields, detectionsFields)
	if !found {
		return t.legacyDetection(rec)
	}

	if s, ok := raw.(string); ok {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			t.log.Warn("Record %s carries undecodable detections payload, treating as empty", rec.ID)
			return nil
		}
		raw = decoded
	}

	list, ok := raw.([]interface{})
	if !ok {
		return t.legacyDetection(rec)
	}

	detections := make([]event.Detection, 0, len(list))
	for _, entry := range list {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			t.log.Debug("Record %s detection entry is not an object, dropping", rec.ID)
			continue
		}
		d, ok := t.buildDetection(fields)
		if !ok {
			t.log.Debug("Record %s detection missing required fields, dropping", rec.ID)
			continue
		}
		detections = append(detections, d)
	}
	return detections
}

// legacyDetection handles the old single-detection producer format: the
// detection fields live directly in the record behind a has_detection flag.
func (t *Transformer) legacyDetection(rec *message.Record) []event.Detection {
	flag, found := lookup(rec.Fields, []string{"has_detection"})
	if !found || !truthy(flag) {
		return nil
	}
	d, ok := t.buildDetection(rec.Fields)
	if !ok {
		return nil
	}
	return []event.Detection{d}
}

// buildDetection assembles one detection from a raw field map. Every target
// field is resolved through its synonym list; the detection is rejected
// unless all required fields resolve.
func (t *Transformer) buildDetection(fields map[string]interface{}) (event.Detection, bool) {
	var d event.Detection

	classID, okClass := lookupInt(fields, classIDFields)
	photoURL, okPhoto := lookupString(fields, photoURLFields)
	x, okX := lookupInt(fields, coordinateXFields)
	y, okY := lookupInt(fields, coordinateYFields)

	confidence, okConf := lookupInt(fields, confidenceFields)
	if okConf && (confidence < 0 || confidence > 100) {
		okConf = false
	}

	if !okClass || !okConf || !okPhoto || !okX || !okY {
		return event.Detection{}, false
	}

	d.ClassID = classID
	d.Confidence = confidence
	d.PhotoURL = photoURL
	d.CoordinateX = x
	d.CoordinateY = y

	if raw, found := lookup(fields, regionIDFields); found {
		d.RegionIDs = parseIntList(raw)
	}

	return d, true
}

// lookup returns the first present non-nil value among the synonyms.
func lookup(fields map[string]interface{}, synonyms []string) (interface{}, bool) {
	for _, name := range synonyms {
		if v, ok := fields[name]; ok && v != nil && v != "" {
			return v, true
		}
	}
	return nil, false
}

// lookupInt resolves a synonym list and coerces the value to an integer.
func lookupInt(fields map[string]interface{}, synonyms []string) (int, bool) {
	v, found := lookup(fields, synonyms)
	if !found {
		return 0, false
	}
	return toInt(v)
}

// lookupString resolves a synonym list to a string. Scalar values are
// coerced; some producers send numeric photo references.
func lookupString(fields map[string]interface{}, synonyms []string) (string, bool) {
	v, found := lookup(fields, synonyms)
	if !found {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}

// lookupTime resolves a synonym list and parses the value as a timestamp.
func lookupTime(fields map[string]interface{}, synonyms []string) (time.Time, bool) {
	v, found := lookup(fields, synonyms)
	if !found {
		return time.Time{}, false
	}
	if ts, ok := v.(time.Time); ok {
		return ts, true
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	return parseTime(s)
}

// parseTime tries ISO-8601 first (a trailing Z means UTC), then the plain
// space-separated format some producers emit.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// toInt coerces the usual wire representations to an integer. Stream field
// values are strings; decoded JSON numbers are float64 and truncate toward
// zero.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// parseIntList accepts a literal list or a JSON string encoding one and
// coerces every element to an integer. Anything else yields nil.
func parseIntList(v interface{}) []int {
	if s, ok := v.(string); ok {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil
		}
		v = decoded
	}

	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, entry := range list {
		n, ok := toInt(entry)
		if !ok {
			return nil
		}
		out = append(out, n)
	}
	return out
}

// truthy interprets the producer's boolean spellings.
func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "true", "1", "yes":
			return true
		}
		return false
	case float64:
		return b != 0
	case int:
		return b != 0
	default:
		return false
	}
}
