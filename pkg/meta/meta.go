// Package meta normalizes raw photo metadata into a caption.
package meta

// Defaults for fields absent from the raw record.
const (
	UnknownCamera       = "Unknown Camera"
	UnknownLens         = "Unknown Lens"
	UnknownAperture     = "Unknown Aperture"
	UnknownFocalLength  = "Unknown Focal Length"
	UnknownExposureTime = "Unknown Exposure Time"
	UnknownISO          = "Unknown ISO"
)

// ExifDate is the layout of EXIF timestamps.
const ExifDate = "2006:01:02 15:04:05"

// WhiteBalance is the white balance mode a photo was taken with.
type WhiteBalance int

const (
	// WhiteBalanceAuto is EXIF white balance code 0.
	WhiteBalanceAuto WhiteBalance = iota
	// WhiteBalanceCustom is any other code.
	WhiteBalanceCustom
)

func (w WhiteBalance) String() string {
	if w == WhiteBalanceCustom {
		return "Custom"
	}
	return "Auto"
}

// PhotoMetadata is the canonical metadata of a photo. Every field is populated.
type PhotoMetadata struct {
	CameraModel  string
	LensModel    string
	CapturedAt   string
	Aperture     string
	FocalLength  string
	ExposureTime string
	ISO          string
	WhiteBalance WhiteBalance
	GPS          *GPSInfo
}
