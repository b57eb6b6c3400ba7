// Package pipeline implements the derivation pipeline (§4.5): ordered
// execution of typed steps against a shared, page-oriented worker pool,
// with a full barrier between steps.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/derivans/internal/alto"
	"github.com/MeKo-Tech/derivans/internal/footer"
	"github.com/MeKo-Tech/derivans/internal/imageproc"
	"github.com/MeKo-Tech/derivans/internal/mets"
	"github.com/MeKo-Tech/derivans/internal/model"
	"github.com/MeKo-Tech/derivans/internal/pdfcompose"
	"github.com/MeKo-Tech/derivans/internal/runmetrics"
	"github.com/MeKo-Tech/derivans/internal/structure"
	"github.com/MeKo-Tech/derivans/internal/version"
)

// toolLabel is the tool name recorded, together with version.Version, in
// the METS agent entry EnrichPDF injects.
const toolLabel = "derivans"

// Pipeline holds the assembled run state: the page list, descriptive data,
// optional structure tree and METS store, and run-wide settings a step
// needs but a RunPlan doesn't carry (pool size, template, ALTO directory).
type Pipeline struct {
	Pages       []*model.DigitalPage
	Descriptive model.DescriptiveData
	Structure   *model.StructureNode
	Identifier  string
	MetsStore   *mets.MetadataStore // nil when the run has no METS input
	AltoDir     string              // empty disables OCR attachment

	PoolSize       int
	FooterTemplate string
	EnableLeaves   bool

	// ProgressCallback, when set, receives per-page progress notifications
	// from every image-oriented step's worker pool (nil disables reporting
	// entirely, the zero value behaviour runPageWorkerPool already has).
	ProgressCallback ProgressCallback

	// RunID correlates this run's log lines and metrics, per the teacher's
	// request-scoped correlation id convention.
	RunID string
}

// NewPipeline assembles a Pipeline, generating a correlation id.
func NewPipeline() *Pipeline {
	return &Pipeline{RunID: uuid.NewString()}
}

// RunReport summarises one Execute call for the process's exit summary
// line (§6 "Exit").
type RunReport struct {
	RunID         string
	StepMetrics   []StepMetrics
	GranularsSeen int64
	OutlineBuilt  bool
	PDFPath       string
}

// Execute runs every step of plan in order, returning a RunReport. On the
// first fatal error it stops immediately and returns the error; per §4.5
// "a step either reports success and advances, or propagates a fatal
// error to the caller."
func (p *Pipeline) Execute(ctx context.Context, runRoot string, plan *RunPlan) (RunReport, error) {
	report := RunReport{RunID: p.RunID}
	logger := slog.With("run_id", p.RunID)

	if err := p.attachOCR(); err != nil {
		return report, fmt.Errorf("pipeline: attach ocr: %w", err)
	}

	poolSize := DefaultPoolSize(p.PoolSize)

	for _, step := range plan.Steps() {
		outDir := filepath.Join(runRoot, step.OutputSubdir)
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return report, fmt.Errorf("pipeline: create output dir %s: %w", outDir, err)
		}

		logger.Info("starting step", "kind", step.Kind, "output", outDir)
		runmetrics.SetWorkerPoolSize(string(step.Kind), poolSize)

		metrics, err := measureStep(step.Kind, len(p.Pages), func() error {
			return p.runStep(ctx, runRoot, step, poolSize, &report)
		})
		report.StepMetrics = append(report.StepMetrics, metrics)
		runmetrics.ObserveStepDuration(string(step.Kind), time.Duration(metrics.Duration).Seconds())
		runmetrics.AddPagesProcessed(string(step.Kind), len(p.Pages))

		if err != nil {
			runmetrics.ObserveRunOutcome(false)
			return report, fmt.Errorf("pipeline: step %s: %w", step.Kind, err)
		}
		logger.Info("step complete", "kind", step.Kind, "metrics", metrics.String())
	}

	runmetrics.ObserveRunOutcome(true)
	return report, nil
}

// runStep dispatches a single step to its implementation. Image-oriented
// steps run on the bounded worker pool (§5); Pdf and Enrich are
// single-threaded, per §4.6 and §4.3 respectively.
func (p *Pipeline) runStep(ctx context.Context, runRoot string, step DerivateStep, poolSize int, report *RunReport) error {
	outDir := filepath.Join(runRoot, step.OutputSubdir)

	switch step.Kind {
	case StepImageCopy, StepImageScale:
		fn := deriveImage(outDir, step.Quality, step.MaxDimension)
		return runPageWorkerPool(ctx, p.Pages, PoolConfig{PoolSize: poolSize, ProgressCallback: p.ProgressCallback}, fn)

	case StepImageFooter, StepImageFooterGranular:
		return p.runFooterStep(ctx, outDir, step, poolSize, report)

	case StepPdf:
		return p.runPdfStep(runRoot, step, report)

	case StepEnrich:
		return p.runEnrichStep()

	default:
		return fmt.Errorf("pipeline: unknown step kind %q", step.Kind)
	}
}

func (p *Pipeline) runFooterStep(ctx context.Context, outDir string, step DerivateStep, poolSize int, report *RunReport) error {
	if len(p.Pages) == 0 {
		return fmt.Errorf("pipeline: footer step has no pages")
	}

	firstImg, _, err := imageproc.Decode(p.Pages[0].ImagePath)
	if err != nil {
		return fmt.Errorf("decode first page for footer base band: %w", err)
	}

	base, err := footer.Render(firstImg.Bounds().Dx(), p.FooterTemplate, p.Descriptive)
	if err != nil {
		return fmt.Errorf("render footer base band: %w", err)
	}

	var granularSeen int64
	granular := step.Kind == StepImageFooterGranular
	fn := deriveFooter(outDir, step.Quality, base, granular, &granularSeen)

	if err := runPageWorkerPool(ctx, p.Pages, PoolConfig{PoolSize: poolSize, ProgressCallback: p.ProgressCallback}, fn); err != nil {
		return err
	}

	report.GranularsSeen += granularSeen
	for range granularSeen {
		runmetrics.IncGranularSeen()
	}
	return nil
}

func (p *Pipeline) runPdfStep(runRoot string, step DerivateStep, report *RunReport) error {
	outPath := filepath.Join(runRoot, p.Identifier+".pdf")

	ok, err := pdfcompose.Compose(p.Pages, p.Structure, outPath, pdfcompose.Options{
		Descriptive: p.Descriptive,
		Conformance: step.Conformance,
		FontSize:    step.FontSize,
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pdf composition did not meet the page-count/outline success criterion")
	}
	report.PDFPath = outPath
	report.OutlineBuilt = p.Structure != nil
	return nil
}

func (p *Pipeline) runEnrichStep() error {
	if p.MetsStore == nil {
		slog.Warn("enrich step skipped: run has no METS input")
		return nil
	}
	return p.MetsStore.EnrichPDF(p.Identifier, toolLabel+"/"+version.Version, time.Now())
}

// attachOCR loads each page's ALTO projection, by convention at
// AltoDir/<basename>.xml where basename matches the page's original file
// pointer stem. Missing AltoDir or missing individual files are not
// errors: OCR is optional per §1 ("optionally ... ALTO OCR files").
func (p *Pipeline) attachOCR() error {
	if p.AltoDir == "" {
		return nil
	}
	for _, page := range p.Pages {
		stem := strings.TrimSuffix(filepath.Base(page.FilePointer), filepath.Ext(page.FilePointer))
		path := filepath.Join(p.AltoDir, stem+".xml")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		ocr, err := alto.ParseALTO(path)
		if err != nil {
			return fmt.Errorf("parse alto %s: %w", path, err)
		}
		page.OCR = ocr
	}
	return nil
}

// StructureFor builds the outline tree from the pipeline's METS store, if
// any, per §4.4. Call before Execute; Pipeline.Structure is left nil when
// there is no METS input, matching the "no METS present" input shape.
func (p *Pipeline) StructureFor(fallbackTitle string) error {
	if p.MetsStore == nil {
		return nil
	}
	in, err := p.MetsStore.StructureInput(fallbackTitle, p.EnableLeaves)
	if err != nil {
		return fmt.Errorf("pipeline: structure input: %w", err)
	}
	tree, err := structure.BuildTree(in)
	if err != nil {
		return fmt.Errorf("pipeline: build structure tree: %w", err)
	}
	p.Structure = tree
	return nil
}
