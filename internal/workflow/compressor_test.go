package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"compressx/internal/domain"
)

type fakeStore struct {
	uploadResult *domain.UploadResult
	uploadErr    error
	deriveErr    error
	fetchData    []byte
	fetchErr     error

	uploadCalls int
	deriveCalls int
	fetchCalls  int
	fetchedURL  string
}

func (f *fakeStore) Upload(_ context.Context, asset domain.Asset, folder string) (*domain.UploadResult, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadResult, nil
}

func (f *fakeStore) DeriveTransformedURL(result *domain.UploadResult, kind domain.MediaKind) (string, error) {
	f.deriveCalls++
	if f.deriveErr != nil {
		return "", f.deriveErr
	}
	url, err := deriveForTest(result, kind)
	if err != nil {
		return "", err
	}
	return url, nil
}

func (f *fakeStore) Fetch(_ context.Context, url string) ([]byte, error) {
	f.fetchCalls++
	f.fetchedURL = url
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.fetchData, nil
}

// deriveForTest mirrors the real rewrite closely enough to assert on the
// directive placement without importing the mediastore package.
func deriveForTest(result *domain.UploadResult, kind domain.MediaKind) (string, error) {
	idx := strings.Index(result.SecureURL, "/upload/")
	if idx < 0 {
		return "", domain.NewMalformedLocatorError("no upload segment")
	}
	base := result.SecureURL[:idx+len("/upload")]
	tail := strings.TrimSuffix(result.SecureURL[idx+len("/upload/"):], ".jpg")
	if kind == domain.MediaKindVideo {
		return base + "/q_auto:low,f_mp4,c_limit,w_1280/" + tail + ".mp4", nil
	}
	return base + "/q_auto:low,f_auto,c_limit,w_1920/" + tail, nil
}

type transition struct {
	state   domain.WorkflowState
	percent int
}

func collectTransitions(dst *[]transition) ProgressFunc {
	return func(state domain.WorkflowState, percent int) {
		*dst = append(*dst, transition{state, percent})
	}
}

func imageAsset(size int) domain.Asset {
	return domain.Asset{Name: "holiday.jpg", Kind: domain.MediaKindImage, Data: make([]byte, size)}
}

func TestCompressHappyPath(t *testing.T) {
	store := &fakeStore{
		uploadResult: &domain.UploadResult{
			SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/CompressX/holiday.jpg",
			PublicID:  "CompressX/holiday",
			Bytes:     1_000_000,
		},
		fetchData: make([]byte, 400_000),
	}
	var seen []transition
	c := New(Options{Store: store, Folder: "CompressX", OnProgress: collectTransitions(&seen)})

	result, err := c.Compress(context.Background(), imageAsset(1_000_000))
	if err != nil {
		t.Fatalf("Compress returned error: %v", err)
	}

	if result.PercentReduction != 60 {
		t.Fatalf("reduction = %d, want 60", result.PercentReduction)
	}
	if result.CompressedSize != 400_000 || result.OriginalSize != 1_000_000 {
		t.Fatalf("sizes = %d/%d", result.CompressedSize, result.OriginalSize)
	}
	if !strings.Contains(result.CompressedURL, "q_auto:low,f_auto,c_limit,w_1920") {
		t.Fatalf("compressed url %q missing image directive", result.CompressedURL)
	}
	if store.fetchedURL != result.CompressedURL {
		t.Fatalf("fetched %q, result reports %q", store.fetchedURL, result.CompressedURL)
	}

	want := []transition{
		{domain.StateIdle, 0},
		{domain.StateUploadingOriginal, 25},
		{domain.StateDerivingLocator, 60},
		{domain.StateFetchingTransformed, 70},
		{domain.StateFetchingTransformed, 95},
		{domain.StateComplete, 100},
	}
	if len(seen) != len(want) {
		t.Fatalf("observed %d transitions, want %d: %+v", len(seen), len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d = %+v, want %+v", i, seen[i], want[i])
		}
	}
}

func TestCompressProgressIsMonotonic(t *testing.T) {
	store := &fakeStore{
		uploadResult: &domain.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/a.jpg"},
		fetchData:    []byte("x"),
	}
	var seen []transition
	c := New(Options{Store: store, OnProgress: collectTransitions(&seen)})
	if _, err := c.Compress(context.Background(), imageAsset(10)); err != nil {
		t.Fatalf("Compress returned error: %v", err)
	}
	last := -1
	for _, tr := range seen {
		if tr.percent < last {
			t.Fatalf("progress went backwards: %+v", seen)
		}
		last = tr.percent
	}
}

func TestCompressValidationFailureSkipsAllStages(t *testing.T) {
	store := &fakeStore{}
	var seen []transition
	c := New(Options{Store: store, OnProgress: collectTransitions(&seen)})

	_, err := c.Compress(context.Background(), domain.Asset{Name: "movie.xyz", Kind: domain.MediaKindVideo, Data: []byte("x")})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("error kind = %s, want %s", domain.KindOf(err), domain.KindValidation)
	}
	if store.uploadCalls+store.deriveCalls+store.fetchCalls != 0 {
		t.Fatalf("network stages ran for an invalid asset: %+v", store)
	}
	if seen[len(seen)-1].state != domain.StateFailed {
		t.Fatalf("final state = %s, want failed", seen[len(seen)-1].state)
	}
}

func TestCompressStageFailuresLandInFailed(t *testing.T) {
	uploadResult := &domain.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/a.jpg"}
	tests := []struct {
		name  string
		store *fakeStore
		kind  domain.ErrorKind
	}{
		{
			name:  "upload fails",
			store: &fakeStore{uploadErr: domain.NewUploadError("provider down", nil)},
			kind:  domain.KindUpload,
		},
		{
			name:  "derivation fails",
			store: &fakeStore{uploadResult: uploadResult, deriveErr: domain.NewMalformedLocatorError("no marker")},
			kind:  domain.KindMalformedLocator,
		},
		{
			name:  "fetch fails",
			store: &fakeStore{uploadResult: uploadResult, fetchErr: domain.NewFetchError("status 502", nil)},
			kind:  domain.KindFetch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []transition
			c := New(Options{Store: tt.store, OnProgress: collectTransitions(&seen)})
			_, err := c.Compress(context.Background(), imageAsset(100))
			if err == nil {
				t.Fatalf("expected stage error")
			}
			if domain.KindOf(err) != tt.kind {
				t.Fatalf("error kind = %s, want %s", domain.KindOf(err), tt.kind)
			}
			final := seen[len(seen)-1]
			if final.state != domain.StateFailed {
				t.Fatalf("final state = %s, want failed", final.state)
			}
			for _, tr := range seen {
				if tr.state == domain.StateComplete {
					t.Fatalf("run reached complete despite failure: %+v", seen)
				}
			}
		})
	}
}

func TestCompressClampsNegativeReduction(t *testing.T) {
	store := &fakeStore{
		uploadResult: &domain.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/a.jpg"},
		fetchData:    make([]byte, 500),
	}
	c := New(Options{Store: store})
	result, err := c.Compress(context.Background(), imageAsset(100))
	if err != nil {
		t.Fatalf("Compress returned error: %v", err)
	}
	if result.PercentReduction != 0 {
		t.Fatalf("reduction = %d, want clamp to 0", result.PercentReduction)
	}
}

func TestCompressHonorsCancelledContext(t *testing.T) {
	store := &fakeStore{uploadErr: domain.NewUploadError("upload request failed", context.Canceled)}
	c := New(Options{Store: store})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compress(ctx, imageAsset(100))
	if err == nil {
		t.Fatalf("expected error from cancelled run")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error %v does not wrap context.Canceled", err)
	}
	if store.deriveCalls != 0 || store.fetchCalls != 0 {
		t.Fatalf("later stages ran after cancellation: %+v", store)
	}
}
