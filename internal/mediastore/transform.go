package mediastore

import (
	"fmt"
	"path"
	"strings"

	"compressx/internal/domain"
)

// Fixed transformation directives. Not user-configurable.
const (
	imageDirective = "q_auto:low,f_auto,c_limit,w_1920"
	videoDirective = "q_auto:low,f_mp4,c_limit,w_1280"

	uploadMarker = "upload"
)

// DeriveTransformedURL rewrites an upload result's delivery URL into the
// compressed-delivery URL: the path is split at the "upload" segment, the
// extension is stripped from the public-ID tail, and the transformation
// directive for the media kind is inserted between the two. Videos are
// re-targeted at an .mp4 container; images keep content negotiation to the
// directive. Pure function: the same inputs always yield the same string.
func (c *Client) DeriveTransformedURL(result *domain.UploadResult, kind domain.MediaKind) (string, error) {
	return DeriveTransformedURL(result, kind)
}

// DeriveTransformedURL is the package-level form of the derivation so the
// rewrite can be exercised without a configured client.
func DeriveTransformedURL(result *domain.UploadResult, kind domain.MediaKind) (string, error) {
	if result == nil || strings.TrimSpace(result.SecureURL) == "" {
		return "", domain.NewMalformedLocatorError("empty delivery url")
	}
	parts := strings.Split(result.SecureURL, "/")
	markerIdx := -1
	for i, part := range parts {
		if part == uploadMarker {
			markerIdx = i
			break
		}
	}
	if markerIdx < 0 || markerIdx == len(parts)-1 {
		return "", domain.NewMalformedLocatorError(
			fmt.Sprintf("delivery url %q has no %q path segment", result.SecureURL, uploadMarker))
	}

	publicID := strings.Join(parts[markerIdx+1:], "/")
	if ext := path.Ext(publicID); ext != "" {
		publicID = strings.TrimSuffix(publicID, ext)
	}
	if publicID == "" {
		return "", domain.NewMalformedLocatorError(
			fmt.Sprintf("delivery url %q carries no resource identifier", result.SecureURL))
	}
	base := strings.Join(parts[:markerIdx+1], "/")

	if kind == domain.MediaKindVideo {
		return base + "/" + videoDirective + "/" + publicID + ".mp4", nil
	}
	return base + "/" + imageDirective + "/" + publicID, nil
}
