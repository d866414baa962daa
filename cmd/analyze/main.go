// Command analyze runs the logger-path pipeline over a CSV telemetry
// file and writes the resulting analysis document as JSON.
//
// Exit codes: 0 success, 2 malformed input, 3 I/O failure,
// 4 configuration error.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relabs-tech/kartpower/internal/apperr"
	"github.com/relabs-tech/kartpower/internal/applog"
	"github.com/relabs-tech/kartpower/internal/pipeline"
	"github.com/relabs-tech/kartpower/internal/resultbus"
	"github.com/relabs-tech/kartpower/internal/telemetry"
	"github.com/relabs-tech/kartpower/internal/vconfig"
)

const (
	exitOK              = 0
	exitMalformedInput  = 2
	exitIOFailure       = 3
	exitConfigInvalid   = 4
)

func main() {
	var (
		csvPath    string
		configPath string
		lapsFlag   string
		minRPM     float64
		maxRPM     float64
		filter     float64
		outPath    string
		mqttBroker string
		mqttTopic  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "reconstruct wheel-power and wheel-torque curves from a logger CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			applog.InitProduction()

			csvBytes, err := os.ReadFile(csvPath)
			if err != nil {
				return apperr.Newf(apperr.IO, "analyze", "failed to read csv file: %v", err)
			}

			cfg := telemetry.DefaultVehicleConfig()
			if configPath != "" {
				cfg, err = vconfig.Load(configPath)
				if err != nil {
					return err
				}
			}

			req := telemetry.LoggerRunRequest{
				SelectedLaps: parseLapList(lapsFlag),
				MinRPM:       minRPM,
				MaxRPM:       maxRPM,
				FilterLevel:  filter,
			}

			analysis, err := pipeline.RunLogger(csvBytes, cfg, req, time.Now())
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(analysis, "", "  ")
			if err != nil {
				return apperr.Newf(apperr.IO, "analyze", "failed to marshal result: %v", err)
			}
			if err := os.WriteFile(outPath, payload, 0644); err != nil {
				return apperr.Newf(apperr.IO, "analyze", "failed to write output file: %v", err)
			}

			if mqttBroker != "" {
				pub, err := resultbus.Connect(mqttBroker, "kartpower-analyze")
				if err != nil {
					return apperr.Newf(apperr.IO, "analyze", "mqtt connect failed: %v", err)
				}
				defer pub.Close()
				if err := pub.Publish(mqttTopic, analysis); err != nil {
					return apperr.Newf(apperr.IO, "analyze", "mqtt publish failed: %v", err)
				}
			}

			if applog.Logger != nil {
				applog.Logger.Info("analysis complete",
					zap.Int("acceptedSamples", analysis.RawAcceptedCount),
					zap.Int("rpmBins", len(analysis.RPMBins)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the logger CSV file (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a vehicle config file (defaults if omitted)")
	cmd.Flags().StringVar(&lapsFlag, "laps", "", "comma-separated selected lap indices (default: all)")
	cmd.Flags().Float64Var(&minRPM, "min-rpm", 8000, "minimum accepted engine rpm")
	cmd.Flags().Float64Var(&maxRPM, "max-rpm", 15000, "maximum accepted engine rpm")
	cmd.Flags().Float64Var(&filter, "filter", 50, "smoothing filter level [0,100]")
	cmd.Flags().StringVar(&outPath, "out", "", "output JSON path (required)")
	cmd.Flags().StringVar(&mqttBroker, "mqtt", "", "optional MQTT broker URL to publish the result to")
	cmd.Flags().StringVar(&mqttTopic, "mqtt-topic", "kartpower/analysis", "MQTT topic to publish the result to")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("out")

	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case apperr.Is(err, apperr.MalformedInput):
		return exitMalformedInput
	case apperr.Is(err, apperr.IO):
		return exitIOFailure
	case apperr.Is(err, apperr.ConfigurationInvalid):
		return exitConfigInvalid
	default:
		return exitConfigInvalid
	}
}

func parseLapList(s string) []int {
	if s == "" {
		return nil
	}
	fields := strings.Split(s, ",")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
