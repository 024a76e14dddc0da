package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gaitworks/go-gaitpose"
	"github.com/gaitworks/go-gaitpose/align"
	"github.com/gaitworks/go-gaitpose/dataset"
	"github.com/gaitworks/go-gaitpose/estimate"
	"github.com/gaitworks/go-gaitpose/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CLI flags
var (
	annotationsFlag string
	videoCacheFlag  string
	modelFlag       string
	workersFlag     int
	outFlag         string
	overlayDirFlag  string
	metaFlag        bool
	debugFlag       bool
)

// rootCmd is the main Cobra command for the gaitpose CLI
var rootCmd = &cobra.Command{
	Use:   "gaitpose",
	Short: "Align gait annotations with pose keypoints and score fall risk",
	Long: `gaitpose processes a gait annotation dataset against a directory of
cached source videos.  Each sequence's frames are aligned with pose
estimation keypoints, gait features are extracted and a Tinetti POMA
gait score with fall risk level is derived per sequence.

Without --model no pose estimation runs and every row receives
deterministic placeholder keypoints, which still exercises the full
pipeline for dataset validation.

Examples:
  gaitpose -a annotations.csv -c ./videos -m pose_body25.onnx -o report.json
  gaitpose -a annotations.csv -c ./videos --workers 8`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&annotationsFlag, "annotations", "a", "",
		"Annotation dataset CSV file (required)")
	rootCmd.Flags().StringVarP(&videoCacheFlag, "video-cache", "c", "",
		"Directory of cached video files named by video ID")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "",
		"ONNX pose landmark model, omit to use placeholder keypoints")
	rootCmd.Flags().IntVar(&workersFlag, "workers", 4,
		"Number of sequences to process concurrently")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "",
		"Write the run report as JSON to this file")
	rootCmd.Flags().StringVar(&overlayDirFlag, "overlay-dir", "",
		"Write pose overlay videos per sequence into this directory")
	rootCmd.Flags().BoolVar(&metaFlag, "meta", false,
		"Echo annotation metadata on each output frame")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false,
		"Enable debug logging")

	_ = rootCmd.MarkFlagRequired("annotations")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {

	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	rows, err := gaitpose.LoadAnnotations(annotationsFlag)

	if err != nil {
		log.Fatal().Err(err).Str("file", annotationsFlag).
			Msg("failed to load annotations")
	}

	log.Info().Int("rows", len(rows)).Msg("annotations loaded")

	var estimator estimate.Estimator

	if modelFlag != "" {

		landmarker, err := estimate.NewLandmarker(
			estimate.DefaultConfig(modelFlag))

		if err != nil {
			log.Fatal().Err(err).Str("model", modelFlag).
				Msg("failed to load pose model")
		}

		defer landmarker.Close()
		estimator = landmarker
	} else {
		log.Warn().Msg("no model configured, all rows get placeholder keypoints")
	}

	params := dataset.DefaultParams()
	params.Workers = workersFlag
	// overlay rendering locates each sequence's source video through the
	// frame metadata
	params.Aligner.IncludeMeta = metaFlag || overlayDirFlag != ""

	orchestrator := dataset.NewOrchestrator(params)
	resolver := align.NewCacheDirResolver(videoCacheFlag)

	start := time.Now()

	report, err := orchestrator.Run(ctx, rows, estimator, resolver)

	if err != nil {
		// a cancelled run still produced a partial report worth writing
		log.Warn().Err(err).Msg("run interrupted")
	}

	log.Info().
		Str("run", report.RunID).
		Int("sequences", len(report.Sequences)).
		Dur("elapsed", time.Since(start)).
		Msg("dataset run complete")

	if outFlag != "" {
		if err := writeReport(report, outFlag); err != nil {
			log.Fatal().Err(err).Str("file", outFlag).
				Msg("failed to write report")
		}

		log.Info().Str("file", outFlag).Msg("report written")
	}

	if overlayDirFlag != "" {
		writeOverlays(report, resolver, overlayDirFlag)
	}
}

// writeOverlays renders a pose annotated video per sequence into dir.
// Sequences without a resolvable source video are skipped, a failing
// sequence never aborts the remaining overlays.
func writeOverlays(report *dataset.Report, resolver align.Resolver, dir string) {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", dir).
			Msg("failed to create overlay directory")
		return
	}

	overlay := render.NewSequenceOverlay(render.DefaultOverlayParams())

	for _, seq := range report.Sequences {

		if seq.Error != "" || len(seq.Frames) == 0 {
			continue
		}

		meta := seq.Frames[0].Meta

		if meta == nil || meta.SourceRef == "" {
			log.Debug().Str("sequence", seq.SequenceID).
				Msg("no source video reference, skipping overlay")
			continue
		}

		asset, ok := resolver.Resolve(meta.SourceRef)

		if !ok {
			log.Warn().Str("sequence", seq.SequenceID).
				Str("source", meta.SourceRef).
				Msg("source video not cached, skipping overlay")
			continue
		}

		outFile := filepath.Join(dir, seq.SequenceID+".mp4")

		label := fmt.Sprintf("%s  tinetti %d  %s", seq.SequenceID,
			seq.Assessment.Total, seq.Assessment.RiskLevel)

		if err := overlay.Render(asset.LocalPath, outFile, seq.Frames,
			label); err != nil {

			log.Warn().Err(err).Str("sequence", seq.SequenceID).
				Msg("overlay rendering failed")
			continue
		}

		log.Info().Str("file", outFile).Msg("overlay written")
	}
}

// setupLogging configures zerolog console output
func setupLogging() {

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

// writeReport marshals the run report to a JSON file
func writeReport(report *dataset.Report, file string) error {

	data, err := json.MarshalIndent(report, "", "  ")

	if err != nil {
		return err
	}

	return os.WriteFile(file, data, 0o644)
}
