package transform

import (
	"reflect"
	"testing"
	"time"

	"github.com/gozcu/camera-event-writer/internal/log"
	"github.com/gozcu/camera-event-writer/internal/message"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestTransformer() *Transformer {
	return NewWithClock(testClock, log.New())
}

func record(id string, fields map[string]interface{}) message.Record {
	return message.Record{ID: id, Stream: "camera_events", Fields: fields}
}

func TestTransform_FullRecord(t *testing.T) {
	tr := newTestTransformer()

	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"cameraID":  "7",
			"eventDate": "2025-01-01T00:00:00Z",
			"detectedObjects": []interface{}{
				map[string]interface{}{
					"className":   float64(2),
					"confidence":  float64(91),
					"photoUrl":    "a.jpg",
					"coordinateX": float64(10),
					"coordinateY": float64(20),
					"regionID":    []interface{}{float64(1)},
				},
			},
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.CameraID != 7 {
		t.Errorf("expected camera_id 7, got %d", ev.CameraID)
	}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !ev.EventTime.Equal(want) {
		t.Errorf("expected event time %s, got %s", want, ev.EventTime)
	}
	if len(ev.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(ev.Detections))
	}
	d := ev.Detections[0]
	if d.ClassID != 2 || d.Confidence != 91 || d.PhotoURL != "a.jpg" || d.CoordinateX != 10 || d.CoordinateY != 20 {
		t.Errorf("unexpected detection: %+v", d)
	}
	if !reflect.DeepEqual(d.RegionIDs, []int{1}) {
		t.Errorf("expected region ids [1], got %v", d.RegionIDs)
	}
}

func TestTransform_JSONStringDetections(t *testing.T) {
	tr := newTestTransformer()

	// Stream field values arrive as strings, so the detections list is
	// usually a JSON-encoded string rather than a decoded structure
	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"camera_id":       "3",
			"event_time":      "2025-01-01 08:30:00",
			"detectedObjects": `[{"class_name":"5","confidence":"70","photo_url":"b.jpg","coord_x":"1","coord_y":"2","region_ids":"[4,5]"}]`,
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if len(events[0].Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(events[0].Detections))
	}
	d := events[0].Detections[0]
	if d.ClassID != 5 || d.Confidence != 70 || d.PhotoURL != "b.jpg" {
		t.Errorf("unexpected detection: %+v", d)
	}
	if !reflect.DeepEqual(d.RegionIDs, []int{4, 5}) {
		t.Errorf("expected region ids [4 5], got %v", d.RegionIDs)
	}
}

func TestTransform_SkipsBadRecords(t *testing.T) {
	tr := newTestTransformer()

	tests := []struct {
		name   string
		fields map[string]interface{}
	}{
		{"empty field map", map[string]interface{}{}},
		{"missing camera id", map[string]interface{}{
			"eventDate": "2025-01-01T00:00:00Z",
		}},
		{"missing event time", map[string]interface{}{
			"cameraID": "7",
		}},
		{"unparsable event time", map[string]interface{}{
			"cameraID":  "7",
			"eventDate": "yesterday",
		}},
		{"non-positive camera id", map[string]interface{}{
			"cameraID":  "0",
			"eventDate": "2025-01-01T00:00:00Z",
		}},
		{"future event time", map[string]interface{}{
			"cameraID":  "7",
			"eventDate": "2031-01-01T00:00:00Z",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := tr.Transform(message.Batch{Records: []message.Record{record("1-0", tt.fields)}})
			if len(events) != 0 {
				t.Errorf("expected record to be skipped, got %d events", len(events))
			}
		})
	}
}

func TestTransform_BadRecordDoesNotAbortBatch(t *testing.T) {
	tr := newTestTransformer()

	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{"cameraID": "bogus"}),
		record("2-0", map[string]interface{}{
			"cameraID":  "9",
			"eventDate": "2025-01-01T00:00:00Z",
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 {
		t.Fatalf("expected 1 event from the valid record, got %d", len(events))
	}
	if events[0].CameraID != 9 {
		t.Errorf("expected camera_id 9, got %d", events[0].CameraID)
	}
}

func TestTransform_DroppedDetectionKeepsEventAndSiblings(t *testing.T) {
	tr := newTestTransformer()

	good := map[string]interface{}{
		"className": float64(1), "confidence": float64(50), "photoUrl": "ok.jpg",
		"coordinateX": float64(0), "coordinateY": float64(0),
	}
	outOfRange := map[string]interface{}{
		"className": float64(2), "confidence": float64(150), "photoUrl": "bad.jpg",
		"coordinateX": float64(0), "coordinateY": float64(0),
	}
	missingPhoto := map[string]interface{}{
		"className": float64(3), "confidence": float64(50),
		"coordinateX": float64(0), "coordinateY": float64(0),
	}

	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"cameraID":        "7",
			"eventDate":       "2025-01-01T00:00:00Z",
			"detectedObjects": []interface{}{outOfRange, good, missingPhoto},
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 {
		t.Fatalf("expected the parent event to survive, got %d events", len(events))
	}
	if len(events[0].Detections) != 1 {
		t.Fatalf("expected only the valid detection, got %d", len(events[0].Detections))
	}
	if events[0].Detections[0].ClassID != 1 {
		t.Errorf("wrong detection survived: %+v", events[0].Detections[0])
	}
}

func TestTransform_CoercesLooseDetectionTypes(t *testing.T) {
	tr := newTestTransformer()

	// Fractional confidence and a numeric photo reference come from older
	// producers; both are coerced rather than dropped
	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"cameraID":  "7",
			"eventDate": "2025-01-01T00:00:00Z",
			"detectedObjects": []interface{}{
				map[string]interface{}{
					"className":   float64(2),
					"confidence":  91.5,
					"photoUrl":    float64(12345),
					"coordinateX": 10.9,
					"coordinateY": float64(20),
				},
			},
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if len(events[0].Detections) != 1 {
		t.Fatalf("expected the detection to survive coercion, got %d", len(events[0].Detections))
	}
	d := events[0].Detections[0]
	if d.Confidence != 91 {
		t.Errorf("expected confidence truncated to 91, got %d", d.Confidence)
	}
	if d.PhotoURL != "12345" {
		t.Errorf("expected numeric photo reference coerced to %q, got %q", "12345", d.PhotoURL)
	}
	if d.CoordinateX != 10 {
		t.Errorf("expected coordinate truncated to 10, got %d", d.CoordinateX)
	}
}

func TestTransform_UndecodableDetectionsYieldEmptyEvent(t *testing.T) {
	tr := newTestTransformer()

	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"cameraID":        "7",
			"eventDate":       "2025-01-01T00:00:00Z",
			"detectedObjects": "{not json",
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 {
		t.Fatalf("expected the event to survive with no detections, got %d events", len(events))
	}
	if len(events[0].Detections) != 0 {
		t.Errorf("expected 0 detections, got %d", len(events[0].Detections))
	}
}

func TestTransform_LegacySingleDetection(t *testing.T) {
	tr := newTestTransformer()

	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"cameraID":      "4",
			"eventDate":     "2025-01-01T00:00:00Z",
			"has_detection": "true",
			"className":     "6",
			"confidence":    "80",
			"photoUrl":      "legacy.jpg",
			"coordinateX":   "5",
			"coordinateY":   "6",
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if len(events[0].Detections) != 1 {
		t.Fatalf("expected 1 legacy detection, got %d", len(events[0].Detections))
	}
	if events[0].Detections[0].ClassID != 6 || events[0].Detections[0].PhotoURL != "legacy.jpg" {
		t.Errorf("unexpected detection: %+v", events[0].Detections[0])
	}
}

func TestTransform_LegacyFlagFalse(t *testing.T) {
	tr := newTestTransformer()

	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"cameraID":      "4",
			"eventDate":     "2025-01-01T00:00:00Z",
			"has_detection": "false",
			"className":     "6",
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 || len(events[0].Detections) != 0 {
		t.Fatalf("expected 1 event with no detections, got %+v", events)
	}
}

func TestTransform_FrameMetadata(t *testing.T) {
	tr := newTestTransformer()

	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"cameraID":           "7",
			"eventDate":          "2025-01-01T00:00:00Z",
			"frame_number":       "42",
			"processing_time_ms": "15",
		}),
	}}

	events := tr.Transform(batch)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	meta := events[0].Meta
	if meta.FrameNumber == nil || *meta.FrameNumber != 42 {
		t.Errorf("expected frame_number 42, got %v", meta.FrameNumber)
	}
	if meta.ProcessingTimeMS == nil || *meta.ProcessingTimeMS != 15 {
		t.Errorf("expected processing_time_ms 15, got %v", meta.ProcessingTimeMS)
	}
	if meta.StreamLagMS != nil {
		t.Errorf("expected stream_lag_ms to be absent, got %v", meta.StreamLagMS)
	}
}

func TestTransform_Idempotent(t *testing.T) {
	tr := newTestTransformer()

	batch := message.Batch{Records: []message.Record{
		record("1-0", map[string]interface{}{
			"cameraID":        "7",
			"eventDate":       "2025-01-01T00:00:00Z",
			"detectedObjects": `[{"className":2,"confidence":91,"photoUrl":"a.jpg","coordinateX":10,"coordinateY":20}]`,
		}),
		record("2-0", map[string]interface{}{"cameraID": "bad"}),
	}}

	first := tr.Transform(batch)
	second := tr.Transform(batch)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("transform is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-01-01T00:00:00Z", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-01T03:00:00+03:00", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-01 15:04:05", time.Date(2025, 1, 1, 15, 4, 5, 0, time.UTC), true},
		{"2025-01-01T15:04:05", time.Date(2025, 1, 1, 15, 4, 5, 0, time.UTC), true},
		{"not a time", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := parseTime(tt.in)
		if ok != tt.ok {
			t.Errorf("parseTime(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("parseTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want int
		ok   bool
	}{
		{"string", "42", 42, true},
		{"string with spaces", " 7 ", 7, true},
		{"float64", float64(13), 13, true},
		{"fractional float64 truncates", 13.5, 13, true},
		{"int", 9, 9, true},
		{"garbage", "abc", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toInt(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("toInt(%v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseIntList(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []int
	}{
		{"decoded list", []interface{}{float64(1), float64(2)}, []int{1, 2}},
		{"json string", "[3,4]", []int{3, 4}},
		{"string elements", []interface{}{"5", "6"}, []int{5, 6}},
		{"bad json", "[3,", nil},
		{"non-list", "7", nil},
		{"element not an int", []interface{}{"x"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseIntList(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseIntList(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
