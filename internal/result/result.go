// Package result holds the output data model assembled by the
// pipeline orchestrator: per-sample points, bin results, statistics,
// and the top-level analysis documents.
package result

import "time"

// SamplePoint is one accepted logger-path sample, ready for binning
// and lap-trace assembly.
type SamplePoint struct {
	SampleIndex  int     `json:"sampleIndex"`
	LapIndex     int     `json:"lapIndex"`
	TimeSec      float64 `json:"timeSec"`
	EngineRPM    float64 `json:"engineRpm"`
	WheelSpeedKm float64 `json:"wheelSpeedKmh"`
	WheelPowerCV float64 `json:"wheelPowerCv"`
	WheelTorqueN float64 `json:"wheelTorqueNm"`
	Gear         int     `json:"gear"`
	HeadTemp     float64 `json:"headTemp"`
	CoolantTemp  float64 `json:"coolantTemp"`
	ExhaustTemp  float64 `json:"exhaustTemp"`
	Lambda       float64 `json:"lambda"`
}

// RPMBinResult is one 100-rpm-wide bin of aggregated logger samples.
type RPMBinResult struct {
	CentreRPM    float64 `json:"centreRpm"`
	MeanSpeedKmh float64 `json:"meanSpeedKmh"`
	MeanPowerCV  float64 `json:"meanPowerCv"`
	MeanTorqueNm float64 `json:"meanTorqueNm"`
	MeanHeadTemp float64 `json:"meanHeadTemp"`
	MeanCoolant  float64 `json:"meanCoolantTemp"`
	MeanExhaust  float64 `json:"meanExhaustTemp"`
	MeanLambda   float64 `json:"meanLambda"`
	SampleCount  int     `json:"sampleCount"`
}

// SpeedBinResult is one 5-km/h-wide bin of aggregated sensor-path
// samples.
type SpeedBinResult struct {
	CentreSpeedKmh  float64 `json:"centreSpeedKmh"`
	CentreSpeedMps  float64 `json:"centreSpeedMps"`
	MeanPowerCV     float64 `json:"meanPowerCv"`
	MeanPowerW      float64 `json:"meanPowerW"`
	MeanForwardAccl float64 `json:"meanForwardAccelMps2"`
	SampleCount     int     `json:"sampleCount"`
}

// LapTrace is one lap's per-sample telemetry, time-rebased to the
// lap's own start.
type LapTrace struct {
	LapIndex int       `json:"lapIndex"`
	IsOutLap bool      `json:"isOutLap"`
	IsInLap  bool      `json:"isInLap"`
	TimeSec  []float64 `json:"timeSec"`
	Gear     []int     `json:"gear"`
	PowerCV  []float64 `json:"powerCv"`
}

// PeakPoint names a bin's value and the rpm/speed it occurs at.
type PeakPoint struct {
	Value float64 `json:"value"`
	At    float64 `json:"at"`
}

// LoggerStatistics summarizes a logger-path run.
type LoggerStatistics struct {
	PeakPowerCV      PeakPoint `json:"peakPowerCv"`
	PeakTorqueNm     PeakPoint `json:"peakTorqueNm"`
	MeanPowerCV      float64   `json:"meanPowerCv"`
	MeanTorqueNm     float64   `json:"meanTorqueNm"`
	MinRPM           float64   `json:"minRpm"`
	MaxRPM           float64   `json:"maxRpm"`
	AcceptedSamples  int       `json:"acceptedSamples"`
}

// SensorStatistics summarizes a sensor-path run.
type SensorStatistics struct {
	PeakPowerCV       PeakPoint `json:"peakPowerCv"`
	MaxSpeedKmh       float64   `json:"maxSpeedKmh"`
	MaxForwardAccelG  float64   `json:"maxForwardAccelG"`
	MaxDecelerationG  float64   `json:"maxDecelerationG"`
	TotalSamples      int       `json:"totalSamples"`
	ValidSpeedSamples int       `json:"validSpeedSamples"`
}

// LoggerAnalysisResult is the logger-path analysis document.
type LoggerAnalysisResult struct {
	RPMBins         []RPMBinResult   `json:"rpmBins"`
	RawAcceptedCount int             `json:"rawAcceptedCount"`
	LapTraces       []LapTrace       `json:"lapTraces"`
	Statistics      LoggerStatistics `json:"statistics"`
	Timestamp       time.Time        `json:"timestamp"`
}

// SensorAnalysisResult is the sensor-path analysis document.
type SensorAnalysisResult struct {
	SpeedBins  []SpeedBinResult `json:"speedBins"`
	Statistics SensorStatistics `json:"statistics"`
	Timestamp  time.Time        `json:"timestamp"`
}
