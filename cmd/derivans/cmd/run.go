package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/derivans/internal/config"
	"github.com/MeKo-Tech/derivans/internal/discovery"
	"github.com/MeKo-Tech/derivans/internal/mets"
	"github.com/MeKo-Tech/derivans/internal/model"
	"github.com/MeKo-Tech/derivans/internal/pipeline"
	"github.com/MeKo-Tech/derivans/internal/runmetrics"
)

var (
	runOutputDir string
	runProgress  bool
)

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Run the derivation pipeline against a digitized holding",
	Long: `run resolves path - either a bare directory containing an image
subdirectory or a METS file - builds the configured run plan, and executes
it, writing derivatives and the composed PDF/A into the output directory.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runRun,
}

func init() {
	runCmd.Flags().StringVar(&runOutputDir, "output", "", "output directory (default: the resolved input directory)")
	runCmd.Flags().BoolVar(&runProgress, "progress", false, "print a per-step console progress bar for each image step")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := runmetrics.Serve(cmd.Context(), cfg.MetricsAddr); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	in, err := discovery.Resolve(args[0])
	if err != nil {
		return fmt.Errorf("resolve input: %w", err)
	}

	runRoot := runOutputDir
	if runRoot == "" {
		runRoot = filepath.Dir(in.ImageDir)
	}

	p := pipeline.NewPipeline()
	p.AltoDir = in.AltoDir
	p.PoolSize = cfg.PoolSize
	p.FooterTemplate = cfg.Footer.Template
	if runProgress {
		p.ProgressCallback = pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), "derivans: ")
	}

	fallbackTitle := filepath.Base(runRoot)

	if in.MetsPath != "" {
		store, err := mets.NewMetadataStore(in.MetsPath)
		if err != nil {
			return fmt.Errorf("read mets: %w", err)
		}
		p.MetsStore = store
		p.Descriptive = store.Descriptive()
		p.Identifier = identifierFor(p.Descriptive, fallbackTitle)

		pages, err := store.Pages()
		if err != nil {
			return fmt.Errorf("read pages: %w", err)
		}
		p.Pages = resolvePageImagePaths(pages, in.ImageDir)

		if err := p.StructureFor(fallbackTitle); err != nil {
			return fmt.Errorf("build structure: %w", err)
		}
	} else {
		p.Descriptive = model.NewDescriptiveData()
		p.Identifier = fallbackTitle
		pages, err := pagesFromImageDir(in.ImageDir)
		if err != nil {
			return fmt.Errorf("list pages: %w", err)
		}
		p.Pages = pages
	}

	plan, err := planFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("build run plan: %w", err)
	}

	report, err := p.Execute(cmd.Context(), runRoot, plan)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "derivans: run %s failed (run_id=%s): %v\n", args[0], report.RunID, err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "derivans: run %s complete: %d pages, pdf=%s, outline=%t, granulars=%d (run_id=%s)\n",
		args[0], len(p.Pages), report.PDFPath, report.OutlineBuilt, report.GranularsSeen, report.RunID)
	return nil
}

// identifierFor picks the PDF file stem: the MODS record identifier when
// known, falling back to the input directory name (§9 resolved open
// question).
func identifierFor(d model.DescriptiveData, fallback string) string {
	if d.Identifier != "" && d.Identifier != model.NotAvailable {
		return d.Identifier
	}
	return fallback
}

// resolvePageImagePaths rewrites each page's ImagePath from its METS file
// pointer (a bare filename) to its absolute location under imageDir.
func resolvePageImagePaths(pages []*model.DigitalPage, imageDir string) []*model.DigitalPage {
	for _, page := range pages {
		page.ImagePath = filepath.Join(imageDir, page.FilePointer)
	}
	return pages
}

// pagesFromImageDir builds a page list from a bare image directory's
// files in lexical order, used when the run has no METS input (§6).
func pagesFromImageDir(imageDir string) ([]*model.DigitalPage, error) {
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", imageDir, err)
	}
	var pages []*model.DigitalPage
	order := 1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pages = append(pages, &model.DigitalPage{
			Order:       order,
			FilePointer: entry.Name(),
			ImagePath:   filepath.Join(imageDir, entry.Name()),
		})
		order++
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page images found under %s", imageDir)
	}
	return pages, nil
}

// planFromConfig translates the configuration's step list into a RunPlan
// (§3), resolving each step's declared kind to its pipeline.StepKind.
func planFromConfig(cfg *config.Config) (*pipeline.RunPlan, error) {
	b := pipeline.NewRunPlanBuilder()
	for _, s := range cfg.Steps {
		step := pipeline.DerivateStep{
			InputSubdir:  s.InputSubdir,
			OutputSubdir: s.OutputSubdir,
			Quality:      orDefault(s.Quality, cfg.Quality),
			MaxDimension: s.MaxDimension,
			Conformance:  cfg.Pdf.Conformance,
			FontSize:     cfg.Pdf.FontSize,
		}
		switch s.Kind {
		case "image_copy":
			step.Kind = pipeline.StepImageCopy
		case "image_scale":
			step.Kind = pipeline.StepImageScale
		case "image_footer":
			step.Kind = pipeline.StepImageFooter
		case "image_footer_granular":
			step.Kind = pipeline.StepImageFooterGranular
		case "pdf":
			step.Kind = pipeline.StepPdf
		case "enrich":
			step.Kind = pipeline.StepEnrich
		default:
			return nil, fmt.Errorf("unknown step kind %q", s.Kind)
		}
		b.Add(step)
	}
	return b.Build()
}

func orDefault(quality, fallback int) int {
	if quality > 0 {
		return quality
	}
	return fallback
}
