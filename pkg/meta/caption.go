package meta

import "fmt"

// Caption renders the three-line caption printed in the strip below a photo.
func Caption(m PhotoMetadata) string {
	return fmt.Sprintf("%s + %s\n%s %s %ss  ISO-%s\nWhite Balance: %s, Date: %s, GPS: %s",
		m.CameraModel, m.LensModel,
		m.FocalLength, m.Aperture, m.ExposureTime, m.ISO,
		m.WhiteBalance, m.CapturedAt, m.GPS.Summary())
}
