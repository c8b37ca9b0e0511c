package meta

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) }

func TestNormalizeEmpty(t *testing.T) {
	got := Normalizer{Now: fixedNow}.Normalize(Record{})
	want := PhotoMetadata{
		CameraModel:  UnknownCamera,
		LensModel:    UnknownLens,
		CapturedAt:   "2024:05:06 07:08:09",
		Aperture:     UnknownAperture,
		FocalLength:  UnknownFocalLength,
		ExposureTime: UnknownExposureTime,
		ISO:          UnknownISO,
		WhiteBalance: WhiteBalanceAuto,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize({}) mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeDefaultTimeIsNow(t *testing.T) {
	before := time.Now().Truncate(time.Second)
	got := Normalize(Record{})
	ts, err := time.ParseInLocation(ExifDate, got.CapturedAt, time.Local)
	require.NoError(t, err)
	assert.False(t, ts.Before(before), "captured at %s is before %s", ts, before)
}

func TestNormalizeExiftoolRecord(t *testing.T) {
	r := Record{
		"Model":            "ILCE-7M3",
		"LensModel":        "  FE 35mm   F1.8 \t",
		"DateTimeOriginal": "2023:10:01 17:45:00",
		"FNumber":          1.8,
		"FocalLength":      "35.0 mm",
		"ExposureTime":     "1/250",
		"ISO":              float64(400),
		"WhiteBalance":     "Manual",
	}

	got := Normalizer{Now: fixedNow}.Normalize(r)
	want := PhotoMetadata{
		CameraModel:  "ILCE-7M3",
		LensModel:    "FE 35mm F1.8",
		CapturedAt:   "2023:10:01 17:45:00",
		Aperture:     "f/1.8",
		FocalLength:  "35.0 mm",
		ExposureTime: "1/250",
		ISO:          "400",
		WhiteBalance: WhiteBalanceCustom,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeRationalRecord(t *testing.T) {
	r := Record{
		"FNumber":      []any{int64(28), int64(10)},
		"FocalLength":  []any{int64(50), int64(1)},
		"ExposureTime": []any{int64(1), int64(125)},
		"WhiteBalance": int64(1),
	}

	got := Normalizer{Now: fixedNow}.Normalize(r)
	assert.Equal(t, "f/2.8", got.Aperture)
	assert.Equal(t, "50.0 mm", got.FocalLength)
	assert.Equal(t, "1/125", got.ExposureTime)
	assert.Equal(t, WhiteBalanceCustom, got.WhiteBalance)
}

func TestNormalizeSingleFieldMissing(t *testing.T) {
	full := Record{
		"Model":            "NIKON D850",
		"LensModel":        "NIKKOR 24-70",
		"DateTimeOriginal": "2023:01:01 00:00:00",
		"FNumber":          []any{4.0, 1.0},
		"FocalLength":      "70.0 mm",
		"ExposureTime":     "1/60",
		"ISO":              200.0,
		"WhiteBalance":     0.0,
		"GPSAltitude":      "10 m",
	}

	for k := range full {
		t.Run(k, func(t *testing.T) {
			r := Record{}
			for kk, v := range full {
				if kk != k {
					r[kk] = v
				}
			}
			m := Normalizer{Now: fixedNow}.Normalize(r)
			assert.NotEmpty(t, m.CameraModel)
			assert.NotEmpty(t, m.LensModel)
			assert.NotEmpty(t, m.CapturedAt)
			assert.NotEmpty(t, m.Aperture)
			assert.NotEmpty(t, m.FocalLength)
			assert.NotEmpty(t, m.ExposureTime)
			assert.NotEmpty(t, m.ISO)
		})
	}
}

func TestAperture(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: []any{4.0, 1.0}, want: "f/4.0"},
		{in: []any{int64(56), int64(10)}, want: "f/5.6"},
		{in: []any{71.0, 10.0}, want: "f/7.1"},
		{in: 2.8, want: "f/2.8"},
		{in: 11, want: "f/11.0"},
		{in: "f/4.0", want: UnknownAperture},
		{in: []any{4.0, 0.0}, want: UnknownAperture},
		{in: []any{4.0, 1.0, 1.0}, want: UnknownAperture},
		{in: nil, want: UnknownAperture},
		{in: map[string]any{}, want: UnknownAperture},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Aperture(Classify(tc.in)), "Aperture(%v)", tc.in)
	}
}

func TestWhiteBalance(t *testing.T) {
	tests := []struct {
		in   Record
		want WhiteBalance
	}{
		{in: Record{}, want: WhiteBalanceAuto},
		{in: Record{"WhiteBalance": 0.0}, want: WhiteBalanceAuto},
		{in: Record{"WhiteBalance": "Auto"}, want: WhiteBalanceAuto},
		{in: Record{"WhiteBalance": 1.0}, want: WhiteBalanceCustom},
		{in: Record{"WhiteBalance": "Manual"}, want: WhiteBalanceCustom},
		{in: Record{"WhiteBalance": []any{0.0, 1.0}}, want: WhiteBalanceCustom},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Normalize(tc.in).WhiteBalance, "record %v", tc.in)
	}
}

func TestCaptionNoGPS(t *testing.T) {
	m := Normalizer{Now: fixedNow}.Normalize(Record{
		"Model":        "NIKON D850",
		"FNumber":      []any{4.0, 1.0},
		"ISO":          200.0,
		"WhiteBalance": 0.0,
	})

	assert.Equal(t, "f/4.0", m.Aperture)

	lines := strings.Split(Caption(m), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "NIKON D850 + Unknown Lens", lines[0])
	assert.Equal(t, "Unknown Focal Length f/4.0 Unknown Exposure Times  ISO-200", lines[1])
	assert.Equal(t, "White Balance: Auto, Date: 2024:05:06 07:08:09, GPS: No GPS Data Available", lines[2])
}

func TestCaptionRationalGPS(t *testing.T) {
	m := Normalize(Record{
		"GPSLatitude":     []any{[]any{34.0, 1.0}, []any{0.0, 1.0}, []any{0.0, 1.0}},
		"GPSLongitude":    []any{[]any{118.0, 1.0}, []any{0.0, 1.0}, []any{0.0, 1.0}},
		"GPSLatitudeRef":  "N",
		"GPSLongitudeRef": "W",
	})

	c := Caption(m)
	assert.Contains(t, c, "34.0° N")
	assert.Contains(t, c, "118.0° W")
}

func TestCaption(t *testing.T) {
	m := PhotoMetadata{
		CameraModel:  "X-T4",
		LensModel:    "XF23mmF2 R WR",
		CapturedAt:   "2022:02:02 12:00:00",
		Aperture:     "f/2.0",
		FocalLength:  "23.0 mm",
		ExposureTime: "1/500",
		ISO:          "160",
		WhiteBalance: WhiteBalanceCustom,
		GPS:          &GPSInfo{Altitude: "5"},
	}

	want := "X-T4 + XF23mmF2 R WR\n" +
		"23.0 mm f/2.0 1/500s  ISO-160\n" +
		"White Balance: Custom, Date: 2022:02:02 12:00:00, GPS: Alt/5"
	assert.Equal(t, want, Caption(m))
}
