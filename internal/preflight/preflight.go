package preflight

import (
	"fmt"
	"math"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"github.com/nao1215/mediclaim/internal/model"
)

// MinDPI is the lowest scan resolution that extracts reliably.
const MinDPI = 150

// EXIF ResolutionUnit values.
const (
	unitNone       = 1
	unitInch       = 2
	unitCentimeter = 3
)

// Hint codes.
const (
	HintLowResolution = "low_resolution"
	HintLocation      = "gps_location"
	HintDeviceSerial  = "device_serial"
	HintAuthor        = "author"
)

// Hint is one advisory about a document. Hints never block submission.
type Hint struct {
	Code    string
	Message string
}

// Report is the outcome of Check.
type Report struct {
	// DPI is the smaller of the horizontal and vertical resolution, or 0 when unknown.
	DPI float64

	// Hints are the advisories found, in a stable order.
	Hints []Hint
}

// metadata is what Check reads from the EXIF block.
type metadata struct {
	xResolution float64
	yResolution float64
	unit        uint16
	hasGPS      bool
	hasSerial   bool
	hasAuthor   bool
}

// Check inspects image documents for scan-quality and privacy advisories.
// PDFs and images without EXIF produce an empty Report.
func Check(doc *model.Document) Report {
	if doc.MediaType != model.MediaTypeJPEG && doc.MediaType != model.MediaTypePNG {
		return Report{}
	}
	meta, ok := extract(doc.Content)
	if !ok {
		return Report{}
	}
	return evaluate(meta)
}

// extract reads the tags of interest. It reports false when the data has no
// readable EXIF block.
func extract(data []byte) (metadata, bool) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return metadata{}, false
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return metadata{}, false
	}

	var meta metadata
	for _, entry := range entries {
		// IFD1 describes the embedded thumbnail, not the scan.
		if entry.IfdPath != "" && entry.IfdPath != "IFD" && entry.IfdPath != "IFD/Exif" && entry.IfdPath != "IFD/GPSInfo" {
			continue
		}
		switch entry.TagName {
		case "XResolution":
			if meta.xResolution == 0 {
				meta.xResolution = rationalValue(entry.Value)
			}
		case "YResolution":
			if meta.yResolution == 0 {
				meta.yResolution = rationalValue(entry.Value)
			}
		case "ResolutionUnit":
			if v, ok := entry.Value.([]uint16); ok && len(v) > 0 {
				meta.unit = v[0]
			}
		case "GPSLatitude", "GPSLongitude":
			meta.hasGPS = true
		case "SerialNumber", "CameraSerialNumber", "BodySerialNumber":
			meta.hasSerial = true
		case "Artist", "XPAuthor":
			meta.hasAuthor = true
		}
	}
	return meta, true
}

func rationalValue(v any) float64 {
	rs, ok := v.([]exifcommon.Rational)
	if !ok || len(rs) == 0 || rs[0].Denominator == 0 {
		return 0
	}
	return float64(rs[0].Numerator) / float64(rs[0].Denominator)
}

// evaluate turns metadata into advisories.
func evaluate(meta metadata) Report {
	var r Report

	dpi := math.Min(toDPI(meta.xResolution, meta.unit), toDPI(meta.yResolution, meta.unit))
	if meta.xResolution == 0 || meta.yResolution == 0 {
		dpi = math.Max(toDPI(meta.xResolution, meta.unit), toDPI(meta.yResolution, meta.unit))
	}
	r.DPI = dpi

	if dpi > 0 && dpi < MinDPI {
		r.Hints = append(r.Hints, Hint{
			Code:    HintLowResolution,
			Message: fmt.Sprintf("Scan resolution is about %.0f DPI. Scanned documents should be at least %d DPI for reliable extraction.", dpi, MinDPI),
		})
	}
	if meta.hasGPS {
		r.Hints = append(r.Hints, Hint{
			Code:    HintLocation,
			Message: "The image contains GPS coordinates in its EXIF metadata. They are sent to the analysis service with the document.",
		})
	}
	if meta.hasSerial {
		r.Hints = append(r.Hints, Hint{
			Code:    HintDeviceSerial,
			Message: "The image contains a device serial number in its EXIF metadata.",
		})
	}
	if meta.hasAuthor {
		r.Hints = append(r.Hints, Hint{
			Code:    HintAuthor,
			Message: "The image contains author information in its EXIF metadata.",
		})
	}
	return r
}

// toDPI converts a resolution to dots per inch. A missing unit means inches,
// as the EXIF default. Unit "none" gives 0 since no physical size is known.
func toDPI(resolution float64, unit uint16) float64 {
	if resolution <= 0 {
		return 0
	}
	switch unit {
	case unitCentimeter:
		return resolution * 2.54
	case unitNone:
		return 0
	default:
		return resolution
	}
}
