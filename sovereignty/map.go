// Package sovereignty ties the influence engine, renderer, label
// placement, and snapshot codec into the single top-level aggregate
// external callers interact with (spec.md §3's Map, §5's mutation
// discipline).
package sovereignty

import (
	"fmt"
	"io"

	"sovmap/colorassign"
	"sovmap/influence"
	"sovmap/labels"
	"sovmap/mapmodel"
	"sovmap/projection"
	"sovmap/render"
	"sovmap/snapshot"
)

// NotReadyError is returned when Render is called with nothing loaded,
// or TakeImage/SaveOwnerSnapshot is called before a render has run.
type NotReadyError struct {
	Reason string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("sovereignty: not ready: %s", e.Reason)
}

// StateError is returned when a mutating call is made while a render
// is already in flight (spec.md §5).
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("sovereignty: invalid state: %s", e.Reason)
}

// IOError wraps a snapshot read/write failure.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("sovereignty: io: %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// ErrImageAlreadyTaken is returned by a second TakeImage call; the
// first call transfers ownership of the render result out of the Map.
var ErrImageAlreadyTaken = fmt.Errorf("sovereignty: image already taken")

// Map is the top-level aggregate: dimensions, projection, the loaded
// graph, the configurable functions, and the most recent render
// result. It is single-writer; see beginExclusive.
type Map struct {
	width, height int
	proj          projection.Config
	threadCount   int
	minLabelArea  int

	functions       influence.Functions
	influenceConfig influence.Config

	graph      *mapmodel.Graph
	calculated bool
	rendering  bool

	oldOwnerIDs []int32
	result      *render.Result
	imageTaken  bool
}

// New creates an empty Map with the given raster dimensions. Callers
// must call SetProjection before LoadData (sample_rate defaults to 1,
// scale to 1, offsets to 0 otherwise).
func New(width, height int) *Map {
	return &Map{
		width:           width,
		height:          height,
		proj:            projection.Config{Width: width, Height: height, Scale: 1, SampleRate: 1},
		threadCount:     1,
		minLabelArea:    labels.MinArea,
		functions:       influence.DefaultFunctions(),
		influenceConfig: influence.DefaultConfig(),
	}
}

func (m *Map) beginExclusive() error {
	if m.rendering {
		return &StateError{Reason: "an operation is already in progress"}
	}
	m.rendering = true
	return nil
}

func (m *Map) endExclusive() { m.rendering = false }

// SetProjection configures the affine projection and sample rate. If
// scale <= 0, it is auto-derived from referenceExtent the way
// update_size does in the original implementation (spec.md §4.1).
func (m *Map) SetProjection(offsetX, offsetY, scale float64, sampleRate int, referenceExtent float64) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()

	cfg := projection.Config{
		Width: m.width, Height: m.height,
		OffsetX: offsetX, OffsetY: offsetY,
		Scale: scale, SampleRate: sampleRate,
	}
	if scale <= 0 {
		cfg.AutoScale(referenceExtent)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.proj = cfg
	return nil
}

// SetThreadCount sets the render worker count (spec.md §4.5).
func (m *Map) SetThreadCount(n int) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()
	if n < 1 {
		n = 1
	}
	m.threadCount = n
	return nil
}

// SetFunctions installs the three configurable scalar functions.
// Passing a zero value for any field keeps the function currently
// installed for it.
func (m *Map) SetFunctions(fns influence.Functions) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()
	if fns.SovPower != nil {
		m.functions.SovPower = fns.SovPower
	}
	if fns.PowerFalloff != nil {
		m.functions.PowerFalloff = fns.PowerFalloff
	}
	if fns.InfluenceToAlpha != nil {
		m.functions.InfluenceToAlpha = fns.InfluenceToAlpha
	}
	return nil
}

// SetInfluenceConfig overrides the diffusion tuning constants.
func (m *Map) SetInfluenceConfig(cfg influence.Config) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()
	m.influenceConfig = cfg
	return nil
}

// SetMinLabelArea overrides the smallest labeled component size.
func (m *Map) SetMinLabelArea(px int) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()
	m.minLabelArea = px
	return nil
}

// LoadData replaces the loaded graph, filtering out-of-bounds or
// invalid entries per mapmodel.BuildGraph, and assigns colors to any
// owner left unassigned. Invalidates any previous render/calculation
// and drops any previously loaded old-owner snapshot.
func (m *Map) LoadData(
	owners []mapmodel.OwnerInput,
	systems []mapmodel.SystemInput,
	jumps []mapmodel.JumpInput,
	regions []mapmodel.RegionInput,
	constellations []mapmodel.ConstellationInput,
) (mapmodel.LoadReport, error) {
	if err := m.beginExclusive(); err != nil {
		return mapmodel.LoadReport{}, err
	}
	defer m.endExclusive()

	g, report, err := mapmodel.BuildGraph(owners, systems, jumps, regions, constellations, m.proj)
	if err != nil {
		return report, err
	}
	colorassign.Assign(g.Owners)

	m.graph = g
	m.calculated = false
	m.result = nil
	m.imageTaken = false
	m.oldOwnerIDs = nil
	return report, nil
}

// CalculateInfluence runs Phase A of the influence engine over the
// currently loaded graph (spec.md §4.3).
func (m *Map) CalculateInfluence() error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()
	return m.calculateInfluenceLocked()
}

func (m *Map) calculateInfluenceLocked() error {
	if m.graph == nil {
		return &NotReadyError{Reason: "no data loaded"}
	}
	if err := influence.CalculateSystemInfluence(m.graph, m.functions, m.influenceConfig); err != nil {
		m.calculated = false
		m.result = nil
		return err
	}
	m.calculated = true
	return nil
}

// Render walks the raster and produces the RGBA and owner-id buffers.
// If calculate_influence hasn't succeeded yet and data is loaded, it
// is run automatically first (spec.md §7 NotReady policy).
func (m *Map) Render() (*render.Result, error) {
	if err := m.beginExclusive(); err != nil {
		return nil, err
	}
	defer m.endExclusive()

	if !m.calculated {
		if m.graph == nil {
			return nil, &NotReadyError{Reason: "render called before calculate_influence and no data is loaded"}
		}
		if err := m.calculateInfluenceLocked(); err != nil {
			return nil, err
		}
	}

	opts := render.Options{
		Width:           m.width,
		Height:          m.height,
		SampleRate:      m.proj.SampleRateOrOne(),
		ThreadCount:     m.threadCount,
		Functions:       m.functions,
		InfluenceConfig: m.influenceConfig,
		OldOwnerIDs:     m.oldOwnerIDs,
	}
	res, err := render.Render(m.graph, m.graph.Owners, opts)
	if err != nil {
		m.result = nil
		return nil, err
	}
	m.result = res
	m.imageTaken = false
	return res, nil
}

// TakeImage transfers ownership of the most recent render result to
// the caller, removing it from the Map. A second call before the next
// successful render fails with ErrImageAlreadyTaken.
func (m *Map) TakeImage() (*render.Result, error) {
	if err := m.beginExclusive(); err != nil {
		return nil, err
	}
	defer m.endExclusive()
	if m.imageTaken {
		return nil, ErrImageAlreadyTaken
	}
	if m.result == nil {
		return nil, &NotReadyError{Reason: "no render result available"}
	}
	res := m.result
	m.result = nil
	m.imageTaken = true
	return res, nil
}

// Labels computes owner/region label placements from the most recent
// render result (spec.md §4.6).
func (m *Map) Labels() ([]labels.Label, error) {
	if err := m.beginExclusive(); err != nil {
		return nil, err
	}
	defer m.endExclusive()
	if m.result == nil {
		return nil, &NotReadyError{Reason: "no render result available"}
	}
	return labels.Compute(m.result.OwnerIDs, m.width, m.height, m.graph.Regions, m.minLabelArea), nil
}

// LoadOldOwnerSnapshot reads a previous owner-id buffer to drive the
// change-overlay stripe on the next render.
func (m *Map) LoadOldOwnerSnapshot(r io.Reader) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()

	buf, _, _, err := snapshot.Decode(r, m.width, m.height)
	if err != nil {
		return err
	}
	m.oldOwnerIDs = buf
	return nil
}

// LoadOldOwnerSnapshotFile is the file-path convenience form of
// LoadOldOwnerSnapshot, mirroring the original implementation's
// load_old_owner_data entry point.
func (m *Map) LoadOldOwnerSnapshotFile(path string) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()

	buf, _, _, err := snapshot.LoadFile(path, m.width, m.height)
	if err != nil {
		return &IOError{Op: "load_old_owner_data", Err: err}
	}
	m.oldOwnerIDs = buf
	return nil
}

// SaveOwnerSnapshot persists the current owner-id buffer.
func (m *Map) SaveOwnerSnapshot(w io.Writer, compressed bool) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()
	if m.result == nil {
		return &NotReadyError{Reason: "no render result to save"}
	}
	return snapshot.Encode(w, m.result.OwnerIDs, m.width, m.height, compressed)
}

// SaveOwnerSnapshotFile is the file-path convenience form of
// SaveOwnerSnapshot, mirroring save_owner_data.
func (m *Map) SaveOwnerSnapshotFile(path string, compressed bool) error {
	if err := m.beginExclusive(); err != nil {
		return err
	}
	defer m.endExclusive()
	if m.result == nil {
		return &NotReadyError{Reason: "no render result to save"}
	}
	if err := snapshot.SaveFile(path, m.result.OwnerIDs, m.width, m.height, compressed); err != nil {
		return &IOError{Op: "save_owner_data", Err: err}
	}
	return nil
}

// Graph exposes the loaded graph for read-only inspection (owners,
// systems, regions) by callers such as the overlay layer.
func (m *Map) Graph() *mapmodel.Graph { return m.graph }

// Dimensions returns the raster width and height.
func (m *Map) Dimensions() (int, int) { return m.width, m.height }
