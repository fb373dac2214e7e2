// Package charts draws the presentation's chart widgets as SVG and binds
// them to named mount points of the view.
package charts

import (
	"bytes"
	"log/slog"
	"sort"
	"sync"
)

// Kind is the chart type
type Kind string

const (
	Doughnut Kind = "doughnut"
	Bar      Kind = "bar"
)

// Spec is the fixed data and styling of one chart
type Spec struct {
	ID     string
	Kind   Kind
	Label  string
	Labels []string
	Values []float64
	Colors []string
	// Max pins the value axis of bar charts; 0 scales to the data
	Max float64
	// Unit is appended to values in labels
	Unit string
}

// DefaultSpecs returns the three charts of the reference deck
func DefaultSpecs() map[string]Spec {
	return map[string]Spec{
		"accessChart": {
			ID:     "accessChart",
			Kind:   Doughnut,
			Labels: []string{"Con acceso STEAM", "Sin acceso STEAM"},
			Values: []float64{35, 65},
			Colors: []string{"#7877c6", "#ff77c6"},
			Unit:   "%",
		},
		"steamChart": {
			ID:     "steamChart",
			Kind:   Bar,
			Label:  "Incremento %",
			Labels: []string{"Científicas", "Tecnológicas", "Matemáticas", "Artísticas"},
			Values: []float64{68, 72, 65, 58},
			Colors: []string{
				"rgba(120, 119, 198, 0.8)",
				"rgba(255, 119, 198, 0.8)",
				"rgba(120, 219, 255, 0.8)",
				"rgba(255, 219, 120, 0.8)",
			},
			Max:  80,
			Unit: "%",
		},
		"steamChart2": {
			ID:     "steamChart2",
			Kind:   Bar,
			Label:  "Competencias STEAM",
			Labels: []string{"Pre-test", "Post-test"},
			Values: []float64{2.1, 4.3},
			Colors: []string{"#7877c6", "#ff77c6"},
		},
	}
}

// Mounts is the set of chart mount points the view currently offers
type Mounts interface {
	HasMount(id string) bool
	// Draw replaces the content of mount id
	Draw(id string, svg []byte)
	// Clear empties mount id
	Clear(id string)
}

// Instance is one chart drawn into a mount
type Instance struct {
	ID     string
	Serial int
	SVG    []byte
}

// Adapter owns the live chart instances, at most one per mount
type Adapter struct {
	mu        sync.Mutex
	specs     map[string]Spec
	mounts    Mounts
	instances map[string]*Instance
	serial    int
	log       *slog.Logger
}

// NewAdapter creates an adapter. A nil mounts makes every refresh a logged no-op.
func NewAdapter(specs map[string]Spec, mounts Mounts, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		specs:     specs,
		mounts:    mounts,
		instances: make(map[string]*Instance),
		log:       log,
	}
}

// Refresh destroys the chart bound to mount id and draws a new one.
// Unknown ids and missing mounts are skipped.
func (a *Adapter) Refresh(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mounts == nil {
		a.log.Info("charts unavailable, skipping refresh", "chart", id)
		return
	}
	spec, ok := a.specs[id]
	if !ok || !a.mounts.HasMount(id) {
		return
	}
	if prev, ok := a.instances[id]; ok {
		a.destroy(prev)
	}

	svg, err := Render(spec)
	if err != nil {
		a.log.Warn("chart render failed", "chart", id, "error", err)
		return
	}
	a.serial++
	inst := &Instance{ID: id, Serial: a.serial, SVG: svg}
	a.instances[id] = inst
	a.mounts.Draw(id, svg)
}

// Destroy removes the chart bound to id, if any
func (a *Adapter) Destroy(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if inst, ok := a.instances[id]; ok {
		a.destroy(inst)
	}
}

func (a *Adapter) destroy(inst *Instance) {
	delete(a.instances, inst.ID)
	if a.mounts != nil {
		a.mounts.Clear(inst.ID)
	}
}

// Instance returns the live chart bound to id
func (a *Adapter) Instance(id string) (Instance, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	inst, ok := a.instances[id]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

// Live lists the ids with a live chart
func (a *Adapter) Live() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.instances))
	for id := range a.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SVG renders a chart by id without binding it to a mount
func (a *Adapter) SVG(id string) ([]byte, bool) {
	spec, ok := a.specs[id]
	if !ok {
		return nil, false
	}
	svg, err := Render(spec)
	if err != nil {
		return nil, false
	}
	return svg, true
}

// Render draws spec as a standalone SVG document
func Render(spec Spec) ([]byte, error) {
	var buf bytes.Buffer
	switch spec.Kind {
	case Doughnut:
		drawDoughnut(&buf, spec)
	case Bar:
		drawBar(&buf, spec)
	default:
		return nil, errUnknownKind(spec.Kind)
	}
	return buf.Bytes(), nil
}

type errUnknownKind Kind

func (e errUnknownKind) Error() string {
	return "unknown chart kind " + string(e)
}
