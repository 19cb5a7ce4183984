package report

import (
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// PlotSink collects per-epoch losses and renders them as a line chart.
type PlotSink struct {
	mu      sync.Mutex
	trainer string
	initial float32
	losses  []float32
}

// NewPlotSink creates an empty PlotSink.
func NewPlotSink() *PlotSink {
	return &PlotSink{}
}

func (s *PlotSink) Start(info RunInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trainer = info.Trainer
	s.initial = info.InitialLoss
	s.losses = s.losses[:0]
}

func (s *PlotSink) Epoch(r EpochReport) {
	if !r.HasLoss {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.losses = append(s.losses, r.Loss)
}

func (s *PlotSink) Finish(Summary) {}

// Losses returns the collected losses, initial loss first.
func (s *PlotSink) Losses() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float32, 0, len(s.losses)+1)
	out = append(out, s.initial)
	return append(out, s.losses...)
}

// Save renders the loss curve to path. The extension selects the format
// (png, svg, pdf, ...).
func (s *PlotSink) Save(path string) error {
	losses := s.Losses()
	if len(losses) < 2 {
		return errors.NewValueError("PlotSink.Save", "no epoch losses recorded")
	}

	pts := make(plotter.XYs, len(losses))
	for i, l := range losses {
		pts[i].X = float64(i)
		pts[i].Y = float64(l)
	}

	p := plot.New()
	p.Title.Text = "Training loss (" + s.trainer + ")"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "build loss line")
	}
	p.Add(line, plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
