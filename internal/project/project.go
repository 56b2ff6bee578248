// ABOUTME: Project persistence as a JSON value tree
// ABOUTME: Snapshot types keep file format concerns out of the live timeline
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beatline/beatline-go/pkg/music"
	"github.com/beatline/beatline-go/pkg/timeline"
)

// FileExtension is the project file suffix, without the dot.
const FileExtension = "beatline"

// ErrInvalidProject indicates a project file that parsed but fails
// validation.
var ErrInvalidProject = errors.New("invalid project file")

const timestampLayout = "2006-01-02 15:04:05 UTC"

// Metadata describes a project independent of its musical content.
type Metadata struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	CreatedAt   string `json:"created_at"`
	ModifiedAt  string `json:"modified_at"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
}

// Project is the on-disk representation of a composition: metadata, a
// snapshot of the timeline, and the global playback parameters. It is a
// plain value tree; the live Timeline with its lock never touches JSON.
type Project struct {
	Metadata     Metadata           `json:"metadata"`
	Segments     []timeline.Segment `json:"segments"`
	GlobalBPM    float32            `json:"global_bpm"`
	GlobalVolume float32            `json:"global_volume"`
}

// New creates an empty project with the given name.
func New(name string) *Project {
	now := time.Now().UTC().Format(timestampLayout)
	return &Project{
		Metadata: Metadata{
			Name:       name,
			Version:    "1.0",
			CreatedAt:  now,
			ModifiedAt: now,
		},
		GlobalBPM:    120,
		GlobalVolume: 1.0,
	}
}

// FromTimeline snapshots a timeline into a project's segment list. The
// caller must hold the timeline lock.
func (p *Project) FromTimeline(tl *timeline.Timeline) {
	p.Segments = make([]timeline.Segment, 0, len(tl.Segments()))
	for _, s := range tl.Segments() {
		p.Segments = append(p.Segments, *s.Clone())
	}
	p.GlobalBPM = tl.AverageBPM()
}

// ToTimeline rebuilds a live timeline from the snapshot. Segments are deep
// copies; loading twice yields independent timelines.
func (p *Project) ToTimeline() *timeline.Timeline {
	tl := timeline.New()
	tl.Lock()
	defer tl.Unlock()
	for i := range p.Segments {
		tl.AddSegment(p.Segments[i].Clone())
	}
	return tl
}

// Validate checks the snapshot for values the engine cannot play.
func (p *Project) Validate() error {
	if p.Metadata.Name == "" {
		return fmt.Errorf("%w: empty project name", ErrInvalidProject)
	}
	if p.GlobalBPM < 60 || p.GlobalBPM > 300 {
		return fmt.Errorf("%w: global BPM %v outside 60-300", ErrInvalidProject, p.GlobalBPM)
	}
	if p.GlobalVolume < 0 || p.GlobalVolume > 2 {
		return fmt.Errorf("%w: global volume %v outside 0-2", ErrInvalidProject, p.GlobalVolume)
	}
	for i := range p.Segments {
		s := &p.Segments[i]
		if s.LoopCount < 1 {
			return fmt.Errorf("%w: segment %q has loop count %d", ErrInvalidProject, s.PatternID, s.LoopCount)
		}
		if s.StartTime < 0 {
			return fmt.Errorf("%w: segment %q starts before zero", ErrInvalidProject, s.PatternID)
		}
		if _, err := music.NewTimeSignature(s.TimeSignature.Numerator, s.TimeSignature.Denominator); err != nil {
			return fmt.Errorf("%w: segment %q: %v", ErrInvalidProject, s.PatternID, err)
		}
	}
	return nil
}

// Save writes the project as pretty-printed JSON, updating the modified
// timestamp. The .beatline extension is added when missing.
func (p *Project) Save(path string) error {
	p.Metadata.ModifiedAt = time.Now().UTC().Format(timestampLayout)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if !IsProjectFile(path) {
		path += "." + FileExtension
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Load reads and validates a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// IsProjectFile reports whether a path has the project extension.
func IsProjectFile(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return strings.EqualFold(ext, FileExtension)
}
