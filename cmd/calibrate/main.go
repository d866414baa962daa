// Command calibrate drives the calibration engine either offline, over
// a recorded samples file, or live, serving the interactive
// calibration websocket for a device UI to push samples to
// sample-by-sample.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/kartpower/internal/apperr"
	"github.com/relabs-tech/kartpower/internal/applog"
	"github.com/relabs-tech/kartpower/internal/calibration"
	"github.com/relabs-tech/kartpower/internal/calibws"
)

const (
	exitOK                 = 0
	exitMalformedInput     = 2
	exitIOFailure          = 3
	exitInsufficientSample = 4
)

// samplesFile is the JSON shape read from --samples: two ordered
// buffers of device-frame accelerometer vectors.
type samplesFile struct {
	Gravity []calibration.Vec3 `json:"gravity"`
	Forward []calibration.Vec3 `json:"forward"`
}

func main() {
	var samplesPath string
	var serveAddr string

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "run the calibration engine over a recorded sample buffer, or serve it over a websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serveAddr != "" {
				applog.InitProduction()
				mux := http.NewServeMux()
				mux.HandleFunc("/calibrate", calibws.HandleCalibrationWS)
				if applog.Logger != nil {
					applog.Logger.Sugar().Infof("calibrate --serve listening on %s", serveAddr)
				}
				return http.ListenAndServe(serveAddr, mux)
			}

			if samplesPath == "" {
				return apperr.New(apperr.MalformedInput, "calibrate", "one of --samples or --serve is required")
			}

			raw, err := os.ReadFile(samplesPath)
			if err != nil {
				return apperr.Newf(apperr.IO, "calibrate", "failed to read samples file: %v", err)
			}

			var sf samplesFile
			if err := json.Unmarshal(raw, &sf); err != nil {
				return apperr.Newf(apperr.MalformedInput, "calibrate", "failed to parse samples file: %v", err)
			}

			engine := calibration.New()
			for _, v := range sf.Gravity {
				engine.PushSample(v)
			}
			if err := engine.AdvancePhase(time.Now()); err != nil {
				return err
			}
			for _, v := range sf.Forward {
				engine.PushSample(v)
			}
			if err := engine.AdvancePhase(time.Now()); err != nil {
				return err
			}

			data, ok := engine.Result()
			if !ok {
				return apperr.New(apperr.InsufficientSamples, "calibrate", "calibration did not complete")
			}

			payload, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return apperr.Newf(apperr.IO, "calibrate", "failed to marshal calibration result: %v", err)
			}
			fmt.Println(string(payload))
			return nil
		},
	}

	cmd.Flags().StringVar(&samplesPath, "samples", "", "path to a JSON file of {gravity:[...], forward:[...]} samples")
	cmd.Flags().StringVar(&serveAddr, "serve", "", "serve the interactive calibration websocket on this address instead of reading --samples")
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
	case apperr.Is(err, apperr.InsufficientSamples):
		return exitInsufficientSample
	default:
		return exitInsufficientSample
	}
}
