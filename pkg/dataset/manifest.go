// Package dataset orchestrates the full build: fetch the source documents,
// parse the baseline question list, reconcile the published answer updates,
// attach the officeholder directories, and persist the resulting data set
// with a build manifest.
package dataset

import (
	"time"

	"github.com/civicstudy/civica/pkg/civics"
	"github.com/civicstudy/civica/pkg/sources"
)

// ManifestVersion identifies the manifest schema.
const ManifestVersion = "1"

// StepStatus records the outcome of one pipeline step.
type StepStatus string

const (
	// StepOK indicates the step completed.
	StepOK StepStatus = "ok"

	// StepSkipped indicates the step had no source configured.
	StepSkipped StepStatus = "skipped"

	// StepFailed indicates the step was aborted; the build continued
	// without its contribution.
	StepFailed StepStatus = "failed"
)

// SourceRecord documents one source consumed during a build. Skipped
// steps have no source, so only Kind and Status are set.
type SourceRecord struct {
	Name   string       `json:"name,omitempty"`
	Kind   sources.Kind `json:"kind"`
	URL    string       `json:"url,omitempty"`
	Bytes  int          `json:"bytes,omitempty"`
	Status StepStatus   `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// Manifest is the build record written alongside the question data set.
type Manifest struct {
	Version string            `json:"version"`
	BuiltAt time.Time         `json:"built_at"`
	Sources []SourceRecord    `json:"sources"`
	Stats   civics.Statistics `json:"stats"`

	// UpdatesApplied counts update partials merged into the baseline.
	UpdatesApplied int `json:"updates_applied"`

	// UpdatesSkipped lists update partials that matched no baseline
	// question.
	UpdatesSkipped []string `json:"updates_skipped,omitempty"`
}
