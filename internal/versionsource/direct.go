package versionsource

import (
	"context"
	"fmt"

	"github.com/flanksource/vx/internal/manifest"
)

// DirectSource has no version list: the caller always names an exact
// version (spec.VersionExpr conventionally unused), grounded on the
// predecessor's pkg/manager/direct.DirectURLManager.DiscoverVersions, which
// likewise refuses discovery and requires an exact version up front.
type DirectSource struct{}

// NewDirectSource builds a DirectSource.
func NewDirectSource() *DirectSource { return &DirectSource{} }

func (s *DirectSource) Name() string { return "direct" }

func (s *DirectSource) Discover(ctx context.Context, spec manifest.VersionSource, limit int) ([]string, error) {
	return nil, fmt.Errorf("version discovery not supported for direct sources: specify an exact version")
}
