package pipeline

import "fmt"

// StepKind identifies one of the derivation operations a RunPlan can chain.
type StepKind string

const (
	// StepImageCopy decodes the source image and re-encodes it as a JPEG
	// (at the step's quality, carrying its DPI) into the step's output
	// directory, establishing the initial working copy.
	StepImageCopy StepKind = "image_copy"
	// StepImageScale produces a scaled image derivative (§4.1).
	StepImageScale StepKind = "image_scale"
	// StepImageFooter appends the rendered metadata footer band (§4.2).
	StepImageFooter StepKind = "image_footer"
	// StepImageFooterGranular appends the footer band with the per-page
	// granular identifier overlaid (§4.2).
	StepImageFooterGranular StepKind = "image_footer_granular"
	// StepPdf composes the searchable PDF/A from the current page images
	// and their OCR projections (§4.6).
	StepPdf StepKind = "pdf"
	// StepEnrich writes the PDF file pointer and agent record back into the
	// source METS document (§4.3/§4.6).
	StepEnrich StepKind = "enrich"
)

// DerivateStep is one stage of a RunPlan: an operation plus the input and
// output subdirectories (relative to the run's working directory) it reads
// from and writes to.
type DerivateStep struct {
	Kind         StepKind
	InputSubdir  string
	OutputSubdir string
	Quality      int    // JPEG quality, StepImageCopy/StepImageScale/StepImageFooter* only
	MaxDimension int    // longest-edge cap in pixels, StepImageScale only, 0 = disabled
	Conformance  string // PDF/A conformance level, StepPdf only
	FontSize     int    // StepPdf only; handed to the composer, whose text-layer fit does not read it
}

// RunPlan is the ordered, immutable-after-assembly sequence of steps a
// pipeline run executes, built once from configuration at startup (§3).
type RunPlan struct {
	steps []DerivateStep
	built bool
}

// NewRunPlanBuilder returns an empty, mutable plan builder.
func NewRunPlanBuilder() *RunPlanBuilder {
	return &RunPlanBuilder{}
}

// RunPlanBuilder assembles a RunPlan one step at a time. Once Build is
// called the resulting RunPlan cannot be mutated.
type RunPlanBuilder struct {
	steps []DerivateStep
}

// Add appends a step to the plan under construction.
func (b *RunPlanBuilder) Add(step DerivateStep) *RunPlanBuilder {
	b.steps = append(b.steps, step)
	return b
}

// Build validates and freezes the plan. It fails if no steps were added or
// any step references an empty input/output subdirectory.
func (b *RunPlanBuilder) Build() (*RunPlan, error) {
	if len(b.steps) == 0 {
		return nil, fmt.Errorf("pipeline: run plan has no steps")
	}
	for i, s := range b.steps {
		if s.InputSubdir == "" || s.OutputSubdir == "" {
			return nil, fmt.Errorf("pipeline: step %d (%s) missing input/output subdir", i, s.Kind)
		}
	}
	frozen := make([]DerivateStep, len(b.steps))
	copy(frozen, b.steps)
	return &RunPlan{steps: frozen, built: true}, nil
}

// Steps returns the plan's steps in execution order. The returned slice is
// a defensive copy; mutating it does not affect the plan.
func (p *RunPlan) Steps() []DerivateStep {
	out := make([]DerivateStep, len(p.steps))
	copy(out, p.steps)
	return out
}

// Len returns the number of steps in the plan.
func (p *RunPlan) Len() int {
	return len(p.steps)
}
