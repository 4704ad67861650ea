package preflight

import (
	"math"
	"testing"

	"github.com/nao1215/mediclaim/internal/model"
)

// TestToDPI tests unit conversion.
func TestToDPI(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		resolution float64
		unit       uint16
		expected   float64
	}{
		{"inches", 300, unitInch, 300},
		{"missing unit defaults to inches", 200, 0, 200},
		{"centimeters", 118, unitCentimeter, 299.72},
		{"no unit has no physical size", 72, unitNone, 0},
		{"zero resolution", 0, unitInch, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := toDPI(tc.resolution, tc.unit); math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("toDPI(%v, %d) = %v, want %v", tc.resolution, tc.unit, got, tc.expected)
			}
		})
	}
}

// TestEvaluate tests advisories derived from metadata.
func TestEvaluate(t *testing.T) {
	t.Parallel()

	t.Run("72 DPI scan gets a low resolution hint", func(t *testing.T) {
		t.Parallel()
		r := evaluate(metadata{xResolution: 72, yResolution: 72, unit: unitInch})
		if r.DPI != 72 {
			t.Errorf("DPI = %v, want 72", r.DPI)
		}
		if len(r.Hints) != 1 || r.Hints[0].Code != HintLowResolution {
			t.Fatalf("unexpected hints %+v", r.Hints)
		}
	})

	t.Run("150 DPI scan passes", func(t *testing.T) {
		t.Parallel()
		if r := evaluate(metadata{xResolution: 150, yResolution: 150, unit: unitInch}); len(r.Hints) != 0 {
			t.Errorf("expected no hints, got %+v", r.Hints)
		}
	})

	t.Run("the lower axis decides", func(t *testing.T) {
		t.Parallel()
		r := evaluate(metadata{xResolution: 300, yResolution: 100, unit: unitInch})
		if r.DPI != 100 || len(r.Hints) != 1 {
			t.Errorf("unexpected report %+v", r)
		}
	})

	t.Run("one missing axis uses the other", func(t *testing.T) {
		t.Parallel()
		r := evaluate(metadata{xResolution: 120, unit: unitInch})
		if r.DPI != 120 || len(r.Hints) != 1 {
			t.Errorf("unexpected report %+v", r)
		}
	})

	t.Run("unknown resolution gives no hint", func(t *testing.T) {
		t.Parallel()
		if r := evaluate(metadata{}); r.DPI != 0 || len(r.Hints) != 0 {
			t.Errorf("unexpected report %+v", r)
		}
	})

	t.Run("identifying metadata is reported in order", func(t *testing.T) {
		t.Parallel()
		r := evaluate(metadata{xResolution: 300, yResolution: 300, hasGPS: true, hasSerial: true, hasAuthor: true})
		want := []string{HintLocation, HintDeviceSerial, HintAuthor}
		if len(r.Hints) != len(want) {
			t.Fatalf("unexpected hints %+v", r.Hints)
		}
		for i, code := range want {
			if r.Hints[i].Code != code {
				t.Errorf("hint %d = %q, want %q", i, r.Hints[i].Code, code)
			}
		}
	})
}

// TestCheck tests document level behavior.
func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("PDF is skipped", func(t *testing.T) {
		t.Parallel()
		doc := model.NewDocument("a.pdf", model.MediaTypePDF, []byte("%PDF-1.7"))
		if r := Check(doc); len(r.Hints) != 0 || r.DPI != 0 {
			t.Errorf("unexpected report %+v", r)
		}
	})

	t.Run("JPEG without EXIF gives an empty report", func(t *testing.T) {
		t.Parallel()
		// SOI, APP0 JFIF header, EOI
		jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x48, 0x00, 0x48, 0x00, 0x00, 0xFF, 0xD9}
		doc := model.NewDocument("a.jpg", model.MediaTypeJPEG, jpeg)
		if r := Check(doc); len(r.Hints) != 0 || r.DPI != 0 {
			t.Errorf("unexpected report %+v", r)
		}
	})

	t.Run("garbage bytes give an empty report", func(t *testing.T) {
		t.Parallel()
		doc := model.NewDocument("a.png", model.MediaTypePNG, []byte("not an image at all"))
		if r := Check(doc); len(r.Hints) != 0 {
			t.Errorf("unexpected report %+v", r)
		}
	})
}
