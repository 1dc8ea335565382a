package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"brfiq/internal/domain"
	"brfiq/internal/pipeline"
	"brfiq/internal/port"
	"brfiq/internal/repair"
	"brfiq/mocks"
)

func testOptions(t *testing.T) pipeline.Options {
	t.Helper()
	return pipeline.Options{
		DPI:              300,
		OCRLanguage:      "swe",
		MaxVisionRetries: 1,
		OutputDir:        t.TempDir(),
	}
}

func twoPages() []port.PageImage {
	return []port.PageImage{
		{Page: 1, PNG: []byte("page-1")},
		{Page: 2, PNG: []byte("page-2")},
	}
}

func TestExecute_HappyPath(t *testing.T) {
	opts := testOptions(t)

	rasterizer := new(mocks.MockPageRasterizer)
	rasterizer.On("Rasterize", mock.Anything, "/tmp/brf_bjornen_2023.pdf", 300, 0).
		Return(twoPages(), nil)

	recognizer := new(mocks.MockTextRecognizer)
	recognizer.On("Recognize", mock.Anything, []byte("page-1")).
		Return("Nettoomsättning 3 788 000 kr\n", nil)
	recognizer.On("Recognize", mock.Anything, []byte("page-2")).
		Return("Årets resultat 375 500 kr\n", nil)

	parser := new(mocks.MockVisionParser)
	parser.On("Model").Return("qwen-vl-max")
	parser.On("ParsePage", mock.Anything, port.PageInput{Page: 1, PNG: []byte("page-1")}).
		Return(&port.PageExtraction{
			Fields:           map[string]any{"income_statement.total_revenue": float64(3790000)},
			ConfidenceScores: map[string]float64{"income_statement.total_revenue": 90},
			ModelUsed:        "qwen-vl-max",
		}, nil)
	parser.On("ParsePage", mock.Anything, port.PageInput{Page: 2, PNG: []byte("page-2")}).
		Return(&port.PageExtraction{
			Fields:           map[string]any{"balance_sheet.equity": float64(37750000)},
			ConfidenceScores: map[string]float64{"balance_sheet.equity": 85},
			ModelUsed:        "qwen-vl-max",
		}, nil)

	p := pipeline.New(rasterizer, recognizer, parser, repair.NewRepairer(repair.Config{}), opts)
	run, err := p.Execute(context.Background(), "/tmp/brf_bjornen_2023.pdf")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatePersisted, run.State())
	assert.Empty(t, run.PageErrors())

	// vision's 90 beats OCR's 75 for revenue
	merged := run.Merged()
	revenue := merged.Merged["income_statement"].(map[string]any)["total_revenue"]
	assert.Equal(t, float64(3790000), revenue)
	assert.Equal(t, "vision", merged.Provenance["income_statement.total_revenue"])

	// OCR-only profit_loss survives with its own score
	profit := merged.Merged["income_statement"].(map[string]any)["profit_loss"]
	assert.Equal(t, float64(375500), profit)
	assert.Equal(t, "ocr_only", merged.Provenance["income_statement.profit_loss"])

	// all three artifacts on disk
	for _, rel := range []string{
		filepath.Join("ocr_results", "brf_bjornen_2023_ocr_enhanced.json"),
		filepath.Join("vision_results", "brf_bjornen_2023_vision_enhanced.json"),
		"brf_bjornen_2023_enhanced_results.json",
	} {
		_, statErr := os.Stat(filepath.Join(opts.OutputDir, rel))
		assert.NoError(t, statErr, rel)
	}

	var final struct {
		Data               map[string]any            `json:"data"`
		ExtractionMetadata domain.ExtractionMetadata `json:"extraction_metadata"`
	}
	data, err := os.ReadFile(filepath.Join(opts.OutputDir, "brf_bjornen_2023_enhanced_results.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &final))
	assert.Equal(t, "brf_bjornen_2023", final.ExtractionMetadata.Filename)
	assert.Equal(t, "qwen-vl-max", final.ExtractionMetadata.VisionModel)
	assert.Equal(t, 2, final.ExtractionMetadata.PageCount)
	assert.Greater(t, final.ExtractionMetadata.AvgConfidence, float64(0))
}

func TestExecute_RasterizeFailureIsFatal(t *testing.T) {
	opts := testOptions(t)

	rasterizer := new(mocks.MockPageRasterizer)
	rasterizer.On("Rasterize", mock.Anything, mock.Anything, 300, 0).
		Return(nil, errors.New("pdftoppm failed"))

	p := pipeline.New(rasterizer, new(mocks.MockTextRecognizer), nil, repair.NewRepairer(repair.Config{}), opts)
	run, err := p.Execute(context.Background(), "/tmp/broken.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDocumentUnreadable))
	assert.Equal(t, pipeline.StateNew, run.State())

	var fatal domain.FatalError
	data, readErr := os.ReadFile(filepath.Join(opts.OutputDir, "broken_enhanced_results.json"))
	require.NoError(t, readErr)
	require.NoError(t, json.Unmarshal(data, &fatal))
	assert.Equal(t, "broken", fatal.Filename)
	assert.Contains(t, fatal.Error, "pdftoppm failed")
	assert.False(t, fatal.Timestamp.IsZero())
}

func TestExecute_OCRPageFailureContinues(t *testing.T) {
	opts := testOptions(t)

	rasterizer := new(mocks.MockPageRasterizer)
	rasterizer.On("Rasterize", mock.Anything, mock.Anything, 300, 0).Return(twoPages(), nil)

	recognizer := new(mocks.MockTextRecognizer)
	recognizer.On("Recognize", mock.Anything, []byte("page-1")).
		Return("", errors.New("tesseract crashed"))
	recognizer.On("Recognize", mock.Anything, []byte("page-2")).
		Return("Årets resultat 375 500 kr\n", nil)

	p := pipeline.New(rasterizer, recognizer, nil, repair.NewRepairer(repair.Config{}), opts)
	run, err := p.Execute(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatePersisted, run.State())

	require.Len(t, run.PageErrors(), 1)
	assert.Equal(t, 1, run.PageErrors()[0].Page)
	assert.Equal(t, domain.SourceOCR, run.PageErrors()[0].Source)

	profit := run.Merged().Merged["income_statement"].(map[string]any)["profit_loss"]
	assert.Equal(t, float64(375500), profit)
}

func TestExecute_NoVisionParserSkipsPass(t *testing.T) {
	opts := testOptions(t)

	rasterizer := new(mocks.MockPageRasterizer)
	rasterizer.On("Rasterize", mock.Anything, mock.Anything, 300, 0).
		Return([]port.PageImage{{Page: 1, PNG: []byte("p")}}, nil)

	recognizer := new(mocks.MockTextRecognizer)
	recognizer.On("Recognize", mock.Anything, mock.Anything).
		Return("Nettoomsättning 3 788 000 kr\n", nil)

	p := pipeline.New(rasterizer, recognizer, nil, repair.NewRepairer(repair.Config{}), opts)
	run, err := p.Execute(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatePersisted, run.State())
	assert.Empty(t, run.Metadata().VisionModel)

	revenue := run.Merged().Merged["income_statement"].(map[string]any)["total_revenue"]
	assert.Equal(t, float64(3788000), revenue)
	assert.Equal(t, "ocr_only", run.Merged().Provenance["income_statement.total_revenue"])
}

func TestExecute_VisionPageExhaustsRetries(t *testing.T) {
	opts := testOptions(t)

	rasterizer := new(mocks.MockPageRasterizer)
	rasterizer.On("Rasterize", mock.Anything, mock.Anything, 300, 0).
		Return([]port.PageImage{{Page: 1, PNG: []byte("p")}}, nil)

	recognizer := new(mocks.MockTextRecognizer)
	recognizer.On("Recognize", mock.Anything, mock.Anything).Return("", nil)

	parser := new(mocks.MockVisionParser)
	parser.On("Model").Return("qwen-vl-max")
	parser.On("ParsePage", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream 503"))

	p := pipeline.New(rasterizer, recognizer, parser, repair.NewRepairer(repair.Config{}), opts)
	run, err := p.Execute(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatePersisted, run.State())

	require.Len(t, run.PageErrors(), 1)
	assert.Equal(t, domain.SourceVision, run.PageErrors()[0].Source)
	parser.AssertNumberOfCalls(t, "ParsePage", 1)
}

func TestExecute_VisionRetrySucceeds(t *testing.T) {
	opts := testOptions(t)
	opts.MaxVisionRetries = 2

	rasterizer := new(mocks.MockPageRasterizer)
	rasterizer.On("Rasterize", mock.Anything, mock.Anything, 300, 0).
		Return([]port.PageImage{{Page: 1, PNG: []byte("p")}}, nil)

	recognizer := new(mocks.MockTextRecognizer)
	recognizer.On("Recognize", mock.Anything, mock.Anything).Return("", nil)

	parser := new(mocks.MockVisionParser)
	parser.On("Model").Return("qwen-vl-max")
	parser.On("ParsePage", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream 503")).Once()
	parser.On("ParsePage", mock.Anything, mock.Anything).
		Return(&port.PageExtraction{
			Fields:           map[string]any{"balance_sheet.equity": float64(100)},
			ConfidenceScores: map[string]float64{"balance_sheet.equity": 85},
		}, nil)

	start := time.Now()
	p := pipeline.New(rasterizer, recognizer, parser, repair.NewRepairer(repair.Config{}), opts)
	run, err := p.Execute(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Empty(t, run.PageErrors())
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Second, "backoff before the retry")

	equity := run.Merged().Merged["balance_sheet"].(map[string]any)["equity"]
	assert.Equal(t, float64(100), equity)
}

func TestRun_NoReentry(t *testing.T) {
	opts := testOptions(t)

	rasterizer := new(mocks.MockPageRasterizer)
	rasterizer.On("Rasterize", mock.Anything, mock.Anything, 300, 0).
		Return([]port.PageImage{{Page: 1, PNG: []byte("p")}}, nil)

	p := pipeline.New(rasterizer, new(mocks.MockTextRecognizer), nil, repair.NewRepairer(repair.Config{}), opts)
	run := p.NewRun("/tmp/report.pdf")

	require.NoError(t, run.Preprocess(context.Background()))
	err := run.Preprocess(context.Background())
	require.Error(t, err)

	// merge before the passes is rejected too
	assert.Error(t, run.Merge())
}
