// Package sources manages the registry of remote source documents the
// pipeline builds from: the baseline question list, the answer-updates
// page, and the officeholder directories. Sources are described in YAML
// files and can be watched for changes to trigger rebuilds.
package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind identifies what a source document contains and which extractor
// handles it.
type Kind string

const (
	// KindQuestions is the baseline civics question document (plain text).
	KindQuestions Kind = "questions"

	// KindUpdates is the published answer-updates HTML page.
	KindUpdates Kind = "updates"

	// KindSenators is the Senate member XML feed.
	KindSenators Kind = "senators"

	// KindRepresentatives is the House representatives directory page.
	KindRepresentatives Kind = "representatives"

	// KindGovernors is the state governors directory page.
	KindGovernors Kind = "governors"
)

// knownKinds is the closed set of source kinds the pipeline understands.
var knownKinds = map[Kind]bool{
	KindQuestions:       true,
	KindUpdates:         true,
	KindSenators:        true,
	KindRepresentatives: true,
	KindGovernors:       true,
}

// Source describes a single remote document.
type Source struct {
	// Name is the unique identifier for this source.
	Name string `yaml:"name" json:"name"`

	// Kind is the source kind (questions, updates, senators,
	// representatives, governors).
	Kind Kind `yaml:"kind" json:"kind"`

	// URL is the document location.
	URL string `yaml:"url" json:"url"`

	// CacheTTL overrides the fetcher's default cache TTL when non-zero.
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty"`
}

// Validate checks that the source is well-formed.
func (s *Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source has no name")
	}
	if !knownKinds[s.Kind] {
		return fmt.Errorf("source %q has unknown kind %q", s.Name, s.Kind)
	}
	if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		return fmt.Errorf("source %q has invalid URL %q", s.Name, s.URL)
	}
	return nil
}

// sourceFile is the YAML document shape: a named list of sources.
type sourceFile struct {
	Sources []*Source `yaml:"sources"`
}

// Defaults returns the built-in source set pointing at the government
// endpoints the pipeline was written for.
func Defaults() []*Source {
	return []*Source{
		{
			Name: "uscis-100q",
			Kind: KindQuestions,
			URL:  "https://www.uscis.gov/sites/default/files/document/questions-and-answers/100q.txt",
		},
		{
			Name: "uscis-updates",
			Kind: KindUpdates,
			URL:  "https://www.uscis.gov/citizenship/find-study-materials-and-resources/check-for-test-updates",
		},
		{
			Name: "senate-members",
			Kind: KindSenators,
			URL:  "https://www.senate.gov/general/contact_information/senators_cfm.xml",
		},
		{
			Name: "house-members",
			Kind: KindRepresentatives,
			URL:  "https://www.house.gov/representatives",
		},
		{
			Name: "state-governors",
			Kind: KindGovernors,
			URL:  "https://www.usa.gov/state-governors",
		},
	}
}

// Registry holds the active source set, keyed by name.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*Source
	order   []string
	dir     string
}

// NewBareRegistry creates a registry with no sources registered, for
// callers that assemble their source set programmatically.
func NewBareRegistry() *Registry {
	return &Registry{sources: make(map[string]*Source)}
}

// NewRegistry creates a registry seeded with the default sources.
func NewRegistry() *Registry {
	registry := &Registry{sources: make(map[string]*Source)}
	for _, source := range Defaults() {
		// Defaults always validate.
		_ = registry.Register(source)
	}
	return registry
}

// NewRegistryWithDirectory creates a registry seeded with defaults and then
// overlaid with every YAML source file in the directory.
func NewRegistryWithDirectory(dir string) (*Registry, error) {
	registry := NewRegistry()
	if err := registry.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return registry, nil
}

// Register adds a source, replacing any existing source with the same name.
func (r *Registry) Register(source *Source) error {
	if source == nil {
		return fmt.Errorf("source cannot be nil")
	}
	if err := source.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[source.Name]; !exists {
		r.order = append(r.order, source.Name)
	}
	r.sources[source.Name] = source
	return nil
}

// Get returns a source by name.
func (r *Registry) Get(name string) (*Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.sources[name]
	return source, ok
}

// ByKind returns all sources of the given kind, in registration order.
func (r *Registry) ByKind(kind Kind) []*Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Source
	for _, name := range r.order {
		if source := r.sources[name]; source.Kind == kind {
			matched = append(matched, source)
		}
	}
	return matched
}

// First returns the first source of the given kind, or false when the
// registry has none.
func (r *Registry) First(kind Kind) (*Source, bool) {
	matched := r.ByKind(kind)
	if len(matched) == 0 {
		return nil, false
	}
	return matched[0], true
}

// List returns all sources in registration order.
func (r *Registry) List() []*Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]*Source, 0, len(r.order))
	for _, name := range r.order {
		sources = append(sources, r.sources[name])
	}
	return sources
}

// LoadDirectory loads every YAML source file from a directory. A missing
// directory is not an error; the built-in defaults remain in effect.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading sources: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads a single YAML source file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var file sourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	for _, source := range file.Sources {
		if err := r.Register(source); err != nil {
			return fmt.Errorf("registering source: %w", err)
		}
	}
	return nil
}

// Save writes the current source set to a YAML file.
func (r *Registry) Save(path string) error {
	file := sourceFile{Sources: r.List()}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshaling sources: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
