package workflow

import (
	"context"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"compressx/internal/domain"
	"compressx/internal/infra"
)

// MediaStore is the slice of the media store client the orchestrator needs.
type MediaStore interface {
	Upload(ctx context.Context, asset domain.Asset, folder string) (*domain.UploadResult, error)
	DeriveTransformedURL(result *domain.UploadResult, kind domain.MediaKind) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ProgressFunc observes workflow state transitions. The percentage only
// moves forward within a run.
type ProgressFunc func(state domain.WorkflowState, percent int)

// Compressor drives the end-to-end compression workflow: upload the
// original, derive the transformed locator, fetch the transformed bytes,
// report metrics. One run per asset; concurrent runs share no state.
type Compressor struct {
	store      MediaStore
	folder     string
	logger     *infra.Logger
	onProgress ProgressFunc
}

// Options configures the compressor.
type Options struct {
	Store      MediaStore
	Folder     string
	Logger     *infra.Logger
	OnProgress ProgressFunc
}

// New constructs a compressor.
func New(opts Options) *Compressor {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Compressor{
		store:      opts.Store,
		folder:     opts.Folder,
		logger:     logger,
		onProgress: opts.OnProgress,
	}
}

// run tracks the state of one workflow invocation. Progress is monotonic;
// terminal states accept no further transitions.
type run struct {
	state    domain.WorkflowState
	percent  int
	observer ProgressFunc
}

func newRun(observer ProgressFunc) *run {
	r := &run{state: domain.StateIdle, observer: observer}
	r.report()
	return r
}

func (r *run) to(state domain.WorkflowState, percent int) {
	if r.state.Terminal() {
		return
	}
	r.state = state
	if percent > r.percent {
		r.percent = percent
	}
	r.report()
}

func (r *run) fail() {
	if r.state.Terminal() {
		return
	}
	r.state = domain.StateFailed
	r.report()
}

func (r *run) report() {
	if r.observer != nil {
		r.observer(r.state, r.percent)
	}
}

// Compress executes one workflow run for the asset. Any stage failure
// terminates the run; the caller must start over from scratch to retry.
func (c *Compressor) Compress(ctx context.Context, asset domain.Asset) (*domain.CompressionResult, error) {
	r := newRun(c.onProgress)

	if err := asset.Validate(); err != nil {
		r.fail()
		return nil, err
	}

	r.to(domain.StateUploadingOriginal, 25)
	uploaded, err := c.store.Upload(ctx, asset, c.folder)
	if err != nil {
		r.fail()
		return nil, err
	}

	r.to(domain.StateDerivingLocator, 60)
	transformedURL, err := c.store.DeriveTransformedURL(uploaded, asset.Kind)
	if err != nil {
		r.fail()
		return nil, err
	}

	r.to(domain.StateFetchingTransformed, 70)
	data, err := c.store.Fetch(ctx, transformedURL)
	if err != nil {
		r.fail()
		return nil, err
	}
	r.to(domain.StateFetchingTransformed, 95)

	result := &domain.CompressionResult{
		Data:             data,
		OriginalSize:     asset.Size(),
		CompressedSize:   int64(len(data)),
		PercentReduction: domain.PercentReduction(asset.Size(), int64(len(data))),
		OriginalURL:      uploaded.SecureURL,
		CompressedURL:    transformedURL,
		Upload:           uploaded,
	}
	r.to(domain.StateComplete, 100)

	c.logger.Info().
		Str("name", asset.Name).
		Str("kind", string(asset.Kind)).
		Str("original", humanize.Bytes(uint64(result.OriginalSize))).
		Str("compressed", humanize.Bytes(uint64(result.CompressedSize))).
		Int("reduction_pct", result.PercentReduction).
		Msg("compression workflow complete")

	return result, nil
}
