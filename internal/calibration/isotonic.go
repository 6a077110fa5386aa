package calibration

import (
	"sort"
)

// IsotonicRegression fits a monotone non-decreasing step function
// minimizing weighted squared error, via the pool-adjacent-violators
// algorithm. Outputs are clipped to [YMin, YMax]; inputs outside the
// fitted domain are clamped to the nearest boundary value.
type IsotonicRegression struct {
	YMin float64
	YMax float64

	// Fitted curve: thresholds ascending, one fitted value per threshold.
	thresholds []float64
	values     []float64
}

// NewIsotonicRegression creates an isotonic calibrator clipped to [0,1]
func NewIsotonicRegression() *IsotonicRegression {
	return &IsotonicRegression{YMin: 0, YMax: 1}
}

// Fit estimates the monotone mapping from (x, y, w) triples. Samples
// sharing an x value are pooled by weighted mean before PAVA.
func (ir *IsotonicRegression) Fit(x, y, w []float64) {
	type point struct{ x, y, w float64 }
	pts := make([]point, 0, len(x))
	for i := range x {
		weight := 1.0
		if w != nil {
			weight = w[i]
		}
		if weight <= 0 {
			continue
		}
		pts = append(pts, point{x[i], y[i], weight})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	// Pool duplicate x values
	xs := make([]float64, 0, len(pts))
	ys := make([]float64, 0, len(pts))
	ws := make([]float64, 0, len(pts))
	for _, p := range pts {
		if n := len(xs); n > 0 && xs[n-1] == p.x {
			tot := ws[n-1] + p.w
			ys[n-1] = (ys[n-1]*ws[n-1] + p.y*p.w) / tot
			ws[n-1] = tot
			continue
		}
		xs = append(xs, p.x)
		ys = append(ys, p.y)
		ws = append(ws, p.w)
	}

	// Pool adjacent violators: merge blocks until non-decreasing
	type block struct {
		sumWY, sumW float64
		end         int // inclusive index into xs of the block's last point
	}
	blocks := make([]block, 0, len(xs))
	for i := range xs {
		blocks = append(blocks, block{sumWY: ys[i] * ws[i], sumW: ws[i], end: i})
		for len(blocks) > 1 {
			last := blocks[len(blocks)-1]
			prev := blocks[len(blocks)-2]
			if prev.sumWY/prev.sumW <= last.sumWY/last.sumW {
				break
			}
			blocks = blocks[:len(blocks)-1]
			blocks[len(blocks)-1] = block{
				sumWY: prev.sumWY + last.sumWY,
				sumW:  prev.sumW + last.sumW,
				end:   last.end,
			}
		}
	}

	ir.thresholds = ir.thresholds[:0]
	ir.values = ir.values[:0]
	start := 0
	for _, b := range blocks {
		v := clip(b.sumWY/b.sumW, ir.YMin, ir.YMax)
		for i := start; i <= b.end; i++ {
			ir.thresholds = append(ir.thresholds, xs[i])
			ir.values = append(ir.values, v)
		}
		start = b.end + 1
	}
}

// Transform maps scores through the fitted step function with linear
// interpolation between thresholds; out-of-domain scores clamp to the
// boundary values.
func (ir *IsotonicRegression) Transform(scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = ir.predict(s)
	}
	return out
}

func (ir *IsotonicRegression) predict(s float64) float64 {
	n := len(ir.thresholds)
	if n == 0 {
		return clip(s, ir.YMin, ir.YMax)
	}
	if s <= ir.thresholds[0] {
		return ir.values[0]
	}
	if s >= ir.thresholds[n-1] {
		return ir.values[n-1]
	}
	// First threshold >= s
	j := sort.SearchFloat64s(ir.thresholds, s)
	if ir.thresholds[j] == s {
		return ir.values[j]
	}
	x0, x1 := ir.thresholds[j-1], ir.thresholds[j]
	y0, y1 := ir.values[j-1], ir.values[j]
	frac := (s - x0) / (x1 - x0)
	return y0 + frac*(y1-y0)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
