package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/derivans/internal/model"
	"github.com/MeKo-Tech/derivans/internal/testutil"
)

func buildPlan(t *testing.T) *RunPlan {
	t.Helper()
	plan, err := NewRunPlanBuilder().
		Add(DerivateStep{Kind: StepImageCopy, InputSubdir: "MAX", OutputSubdir: "COPY", Quality: 90}).
		Add(DerivateStep{Kind: StepImageScale, InputSubdir: "COPY", OutputSubdir: "DEFAULT", Quality: 85, MaxDimension: 400}).
		Add(DerivateStep{Kind: StepImageFooter, InputSubdir: "DEFAULT", OutputSubdir: "FOOTER", Quality: 85}).
		Add(DerivateStep{Kind: StepPdf, InputSubdir: "FOOTER", OutputSubdir: "FOOTER", FontSize: 10}).
		Build()
	require.NoError(t, err)
	return plan
}

func TestPipelineExecuteRunsAllStepsAndBuildsPDF(t *testing.T) {
	root := t.TempDir()
	paths := testutil.GenerateDigitalVolume(t, filepath.Join(root, "MAX"), 2)

	pages := make([]*model.DigitalPage, len(paths))
	for i, p := range paths {
		pages[i] = &model.DigitalPage{Order: i + 1, FilePointer: filepath.Base(p), ImagePath: p}
	}

	p := NewPipeline()
	p.Pages = pages
	p.Identifier = "test-volume"
	p.Descriptive = model.NewDescriptiveData()
	p.Descriptive.Title = "Test Volume"
	p.FooterTemplate = "{{title}}"
	p.PoolSize = 1

	report, err := p.Execute(context.Background(), root, buildPlan(t))
	require.NoError(t, err)

	assert.Len(t, report.StepMetrics, 4)
	assert.Equal(t, filepath.Join(root, "test-volume.pdf"), report.PDFPath)
	assert.True(t, testutil.FileExists(report.PDFPath))
	assert.False(t, report.OutlineBuilt) // no structure tree without a METS store
}

func TestPipelineExecuteSkipsEnrichWithoutMetsStore(t *testing.T) {
	root := t.TempDir()
	paths := testutil.GenerateDigitalVolume(t, filepath.Join(root, "MAX"), 1)

	pages := []*model.DigitalPage{{Order: 1, FilePointer: filepath.Base(paths[0]), ImagePath: paths[0]}}

	p := NewPipeline()
	p.Pages = pages
	p.Identifier = "no-mets"
	p.Descriptive = model.NewDescriptiveData()
	p.FooterTemplate = "{{title}}"

	plan, err := NewRunPlanBuilder().
		Add(DerivateStep{Kind: StepImageCopy, InputSubdir: "MAX", OutputSubdir: "COPY", Quality: 90}).
		Add(DerivateStep{Kind: StepEnrich, InputSubdir: "COPY", OutputSubdir: "COPY"}).
		Build()
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), root, plan)
	require.NoError(t, err) // enrich is a no-op warning, not a fatal error
}

func TestPipelineExecutePropagatesStepError(t *testing.T) {
	root := t.TempDir()
	pages := []*model.DigitalPage{{Order: 1, FilePointer: "missing.jpg", ImagePath: filepath.Join(root, "MAX", "missing.jpg")}}

	p := NewPipeline()
	p.Pages = pages

	plan, err := NewRunPlanBuilder().
		Add(DerivateStep{Kind: StepImageCopy, InputSubdir: "MAX", OutputSubdir: "COPY", Quality: 90}).
		Build()
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), root, plan)
	assert.Error(t, err)
}
