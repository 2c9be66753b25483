// Package main provides the painterly CLI: neural style transfer from the
// command line.
//
// Usage:
//
//	painterly -content photo.jpg -style painting.jpg -weights vgg19.pwts -out result.png
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/painterly-ml/painterly/autodiff"
	"github.com/painterly-ml/painterly/backend/cpu"
	"github.com/painterly-ml/painterly/imaging"
	"github.com/painterly-ml/painterly/style"
	"github.com/painterly-ml/painterly/transfer"
	"github.com/painterly-ml/painterly/vgg"
)

const version = "v0.1.0-dev"

func main() {
	contentPath := flag.String("content", "", "Content image path (required)")
	stylePath := flag.String("style", "", "Style image path (required)")
	outPath := flag.String("out", "generated.png", "Output image path")
	weightsPath := flag.String("weights", "vgg19.pwts", "VGG-19 weights file (PWTS format)")
	alpha := flag.Float64("alpha", 1e-5, "Content loss weight")
	beta := flag.Float64("beta", 1e-2, "Style loss weight")
	lr := flag.Float64("lr", 8, "Adam learning rate")
	iterations := flag.Int("iterations", 2000, "Number of optimization steps")
	checkpoint := flag.Int("checkpoint", 200, "Checkpoint interval in iterations (0 disables)")
	contentLayer := flag.String("content-layer", style.DefaultContentLayer, "Trunk layer for the content loss")
	styleLayers := flag.String("style-layers", "", "Style layers as name:weight,... (default: standard selection)")
	noise := flag.Float64("noise", 0, "Noise ratio blended into the initial image, in [0, 1]")
	seed := flag.Int64("seed", 0, "Noise generator seed")
	logEvery := flag.Int("log-every", 50, "Log losses every N iterations")
	lossCSV := flag.String("loss-csv", "", "Optional CSV file for the loss history")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("painterly %s\n", version)
		return
	}

	log.SetFlags(log.LstdFlags)
	log.SetPrefix("painterly: ")

	if *contentPath == "" || *stylePath == "" {
		flag.Usage()
		log.Fatal("both -content and -style are required")
	}

	cfg := transfer.Config{
		Alpha:              float32(*alpha),
		Beta:               float32(*beta),
		LearningRate:       float32(*lr),
		Iterations:         *iterations,
		CheckpointInterval: *checkpoint,
		ContentLayer:       *contentLayer,
		NoiseRatio:         float32(*noise),
		Seed:               *seed,
	}
	if *styleLayers != "" {
		layers, err := style.ParseLayers(*styleLayers)
		if err != nil {
			log.Fatalf("parsing -style-layers: %v", err)
		}
		cfg.StyleLayers = layers
	}

	if err := run(cfg, *contentPath, *stylePath, *outPath, *weightsPath, *lossCSV, *logEvery); err != nil {
		log.Fatal(err)
	}
}

func run(cfg transfer.Config, contentPath, stylePath, outPath, weightsPath, lossCSV string, logEvery int) error {
	backend := autodiff.New(cpu.New())

	log.Printf("loading weights from %s", weightsPath)
	extractor, err := vgg.Load(weightsPath, backend)
	if err != nil {
		return err
	}

	contentImg, err := imaging.Load(contentPath)
	if err != nil {
		return err
	}
	styleImg, err := imaging.Load(stylePath)
	if err != nil {
		return err
	}

	// The style image is brought to the content's dimensions so activations
	// line up layer by layer.
	bounds := contentImg.Bounds()
	styleImg = imaging.Resize(styleImg, bounds.Dx(), bounds.Dy())

	content := imaging.Preprocess(contentImg, backend)
	styleTensor := imaging.Preprocess(styleImg, backend)

	engine, err := transfer.NewEngine(extractor, content, styleTensor, cfg)
	if err != nil {
		return err
	}

	log.Printf("optimizing %dx%d image for %d iterations (alpha=%g beta=%g lr=%g)",
		bounds.Dx(), bounds.Dy(), cfg.Iterations, cfg.Alpha, cfg.Beta, cfg.LearningRate)

	sink := &checkpointSink{
		outPath: outPath,
		log:     &transfer.LogSink{Interval: logEvery},
	}
	if err := engine.Run(sink); err != nil {
		return err
	}

	final, err := imaging.Deprocess(engine.Image())
	if err != nil {
		return err
	}
	if err := imaging.Save(outPath, final); err != nil {
		return err
	}
	log.Printf("wrote %s", outPath)

	if lossCSV != "" {
		if err := writeLossCSV(lossCSV, engine.History()); err != nil {
			return err
		}
		log.Printf("wrote %s", lossCSV)
	}
	return nil
}

// checkpointSink logs progress and writes snapshot images next to the final
// output, suffixed with the iteration number.
type checkpointSink struct {
	outPath string
	log     *transfer.LogSink
}

func (s *checkpointSink) OnProgress(p transfer.Progress) {
	s.log.OnProgress(p)
	if p.Snapshot == nil {
		return
	}

	img, err := imaging.Deprocess(p.Snapshot)
	if err != nil {
		log.Printf("checkpoint at iteration %d: %v", p.Record.Iteration, err)
		return
	}
	path := checkpointPath(s.outPath, p.Record.Iteration)
	if err := imaging.Save(path, img); err != nil {
		log.Printf("checkpoint %s: %v", path, err)
		return
	}
	log.Printf("checkpoint %s", path)
}

func checkpointPath(outPath string, iteration int) string {
	ext := filepath.Ext(outPath)
	base := strings.TrimSuffix(outPath, ext)
	return fmt.Sprintf("%s_%04d%s", base, iteration, ext)
}

func writeLossCSV(path string, history []transfer.LossRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"iteration", "total", "content", "style"}); err != nil {
		return err
	}
	for _, rec := range history {
		row := []string{
			strconv.Itoa(rec.Iteration),
			strconv.FormatFloat(float64(rec.Total), 'g', -1, 32),
			strconv.FormatFloat(float64(rec.Content), 'g', -1, 32),
			strconv.FormatFloat(float64(rec.Style), 'g', -1, 32),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
