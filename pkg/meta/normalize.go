package meta

import (
	"fmt"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

// Normalizer builds PhotoMetadata from raw records.
type Normalizer struct {
	// Now supplies the capture time for records without DateTimeOriginal.
	Now func() time.Time
}

// Normalize builds PhotoMetadata using the current local time as the capture time fallback.
func Normalize(r Record) PhotoMetadata {
	return Normalizer{Now: time.Now}.Normalize(r)
}

// Normalize never fails: malformed or missing fields fall back to their defaults.
func (n Normalizer) Normalize(r Record) PhotoMetadata {
	now := n.Now
	if now == nil {
		now = time.Now
	}

	m := PhotoMetadata{
		CameraModel:  text(r.Get("Model"), UnknownCamera),
		LensModel:    cleanText(text(r.Get("LensModel"), "")),
		CapturedAt:   text(r.Get("DateTimeOriginal"), ""),
		Aperture:     Aperture(r.Get("FNumber")),
		FocalLength:  focalLength(r.Get("FocalLength")),
		ExposureTime: exposureTime(r.Get("ExposureTime")),
		ISO:          text(r.Get("ISO"), UnknownISO),
		WhiteBalance: whiteBalance(r.Get("WhiteBalance")),
		GPS:          ResolveGPS(r),
	}

	if m.LensModel == "" {
		m.LensModel = UnknownLens
	}

	if m.CapturedAt == "" {
		m.CapturedAt = now().Format(ExifDate)
	}

	klog.V(2).Infof("normalized: %+v", m)
	return m
}

// text renders a scalar value, or def when it is missing or unusable.
func text(v Value, def string) string {
	switch v.Kind {
	case Number, Text, Rational:
		if s := v.String(); s != "" {
			return s
		}
		return def
	case Missing, List, Unknown:
		return def
	}
	return def
}

// cleanText collapses runs of whitespace and trims the ends.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Aperture formats an FNumber as "f/4.0".
func Aperture(v Value) string {
	switch v.Kind {
	case Rational:
		if v.Den == 0 {
			return UnknownAperture
		}
		return fmt.Sprintf("f/%.1f", v.Num/v.Den)
	case Number:
		return fmt.Sprintf("f/%.1f", v.Num)
	case Missing, Text, List, Unknown:
		return UnknownAperture
	}
	return UnknownAperture
}

// focalLength renders rationals such as [50, 1] as "50.0 mm"; exiftool already emits "50.0 mm".
func focalLength(v Value) string {
	if v.Kind == Rational {
		f, ok := v.Float()
		if !ok {
			return UnknownFocalLength
		}
		return fmt.Sprintf("%.1f mm", f)
	}
	return text(v, UnknownFocalLength)
}

// exposureTime renders rationals such as [1, 250] as "1/250".
func exposureTime(v Value) string {
	if v.Kind != Rational {
		return text(v, UnknownExposureTime)
	}

	if v.Den == 0 {
		return UnknownExposureTime
	}

	if v.Num == 1 {
		return "1/" + formatNumber(v.Den)
	}
	return formatNumber(v.Num / v.Den)
}

// whiteBalance maps the EXIF code: 0 (printed by exiftool as "Auto") or absent is Auto, anything else Custom.
func whiteBalance(v Value) WhiteBalance {
	switch v.Kind {
	case Missing:
		return WhiteBalanceAuto
	case Number:
		if v.Num == 0 {
			return WhiteBalanceAuto
		}
	case Text:
		if v.Text == "Auto" {
			return WhiteBalanceAuto
		}
	case Rational, List, Unknown:
	}
	return WhiteBalanceCustom
}
