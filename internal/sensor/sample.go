// Package sensor holds the sensor-path data model: raw device samples
// and GPS fixes.
package sensor

// GPSSample is a single GPS fix collected alongside accelerometer
// samples on the same wall clock.
type GPSSample struct {
	SpeedMps float64 `json:"speedMps"`
	Accuracy float64 `json:"accuracy"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Sample is one raw device-frame accelerometer reading, optionally
// paired with a GPS fix.
type Sample struct {
	TimestampMs float64    `json:"timestampMs"`
	AccelX      float64    `json:"accelX"`
	AccelY      float64    `json:"accelY"`
	AccelZ      float64    `json:"accelZ"`
	GPS         *GPSSample `json:"gps,omitempty"`
}
