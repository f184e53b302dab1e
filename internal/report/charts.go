package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bikereport/internal/analytics"
)

const (
	barSlot         = 7
	histogramBins   = 20
	maxScatterDots  = 2000
	tickCount       = 5
	tickFontSize    = 7
	chartTitleSize  = 11
	axisLabelOffset = 9
)

// plotArea maps data coordinates onto a rectangle of the page
type plotArea struct {
	x, y, w, h             float64
	xMin, xMax, yMin, yMax float64
}

func (p plotArea) px(v float64) float64 {
	return p.x + (v-p.xMin)/(p.xMax-p.xMin)*p.w
}

func (p plotArea) py(v float64) float64 {
	return p.y + p.h - (v-p.yMin)/(p.yMax-p.yMin)*p.h
}

// padRange widens a degenerate or empty range so it can be scaled
func padRange(lo, hi float64) (float64, float64) {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return 0, 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// tickPlaces picks the decimals shown for ticks spaced step apart
func tickPlaces(step float64) int32 {
	switch {
	case step >= 10:
		return 0
	case step >= 1:
		return 1
	case step >= 0.1:
		return 2
	default:
		return 4
	}
}

// chartTitle prints a centered title and returns the y where the plot starts
func (d *document) chartTitle(title string) float64 {
	d.pdf.SetFont("Helvetica", "B", chartTitleSize)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.CellFormat(0, 7, d.tr(title), "", 1, "C", false, 0, "")
	return d.pdf.GetY() + 1
}

func (d *document) noData(top float64) {
	d.pdf.SetDrawColor(colorAxis[0], colorAxis[1], colorAxis[2])
	d.pdf.Rect(marginSide, top, d.contentWidth(), 20, "D")
	d.pdf.SetFont("Helvetica", "I", 9)
	d.pdf.SetXY(marginSide, top+7)
	d.pdf.CellFormat(d.contentWidth(), 6, "No data", "", 1, "C", false, 0, "")
	d.pdf.SetY(top + 24)
}

// axes draws the frame, grid and tick labels of p
func (d *document) axes(p plotArea, xLabel, yLabel string) {
	pdf := d.pdf
	pdf.SetLineWidth(0.1)
	pdf.SetFont("Helvetica", "", tickFontSize)
	pdf.SetTextColor(colorAxis[0], colorAxis[1], colorAxis[2])

	xStep := (p.xMax - p.xMin) / (tickCount - 1)
	yStep := (p.yMax - p.yMin) / (tickCount - 1)
	for i := 0; i < tickCount; i++ {
		xv := p.xMin + float64(i)*xStep
		yv := p.yMin + float64(i)*yStep
		x, y := p.px(xv), p.py(yv)

		pdf.SetDrawColor(colorGrid[0], colorGrid[1], colorGrid[2])
		pdf.Line(x, p.y, x, p.y+p.h)
		pdf.Line(p.x, y, p.x+p.w, y)

		xt := FormatNumber(xv, tickPlaces(xStep))
		pdf.Text(x-pdf.GetStringWidth(xt)/2, p.y+p.h+3.5, xt)
		yt := FormatNumber(yv, tickPlaces(yStep))
		pdf.Text(p.x-pdf.GetStringWidth(yt)-1.5, y+1, yt)
	}

	pdf.SetDrawColor(colorAxis[0], colorAxis[1], colorAxis[2])
	pdf.SetLineWidth(0.3)
	pdf.Rect(p.x, p.y, p.w, p.h, "D")

	pdf.SetFont("Helvetica", "", 8)
	if xLabel != "" {
		pdf.Text(p.x+p.w/2-pdf.GetStringWidth(xLabel)/2, p.y+p.h+axisLabelOffset, d.tr(xLabel))
	}
	if yLabel != "" {
		cx, cy := p.x-axisLabelOffset-5, p.y+p.h/2
		pdf.TransformBegin()
		pdf.TransformRotate(90, cx, cy)
		pdf.Text(cx-pdf.GetStringWidth(yLabel)/2, cy, d.tr(yLabel))
		pdf.TransformEnd()
	}
	pdf.SetTextColor(0, 0, 0)
}

// barChart draws one horizontal bar per label, longest value spanning the plot
func (d *document) barChart(title string, labels []string, values []float64, format func(float64) string) {
	n := len(labels)
	d.ensureSpace(14 + float64(max(n, 3))*barSlot)
	top := d.chartTitle(title)
	if n == 0 {
		d.noData(top)
		return
	}

	pdf := d.pdf
	labelW := d.contentWidth() * 0.42
	plotX := marginSide + labelW + 2
	plotW := d.contentWidth() - labelW - 22

	maxV := 0.0
	for _, v := range values {
		if !math.IsNaN(v) && v > maxV {
			maxV = v
		}
	}
	if maxV == 0 {
		maxV = 1
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetLineWidth(0.2)
	for i, label := range labels {
		y := top + float64(i)*barSlot

		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginSide, y)
		pdf.CellFormat(labelW, barSlot, d.fit(d.tr(label), labelW-1), "", 0, "R", false, 0, "")

		v := values[i]
		bw := 0.0
		if !math.IsNaN(v) && v > 0 {
			bw = v / maxV * plotW
		}
		pdf.SetFillColor(colorBar[0], colorBar[1], colorBar[2])
		pdf.Rect(plotX, y+1, bw, barSlot-2, "F")

		pdf.SetTextColor(colorAxis[0], colorAxis[1], colorAxis[2])
		pdf.Text(plotX+bw+1.5, y+barSlot/2+1.2, format(v))
	}

	pdf.SetDrawColor(colorAxis[0], colorAxis[1], colorAxis[2])
	pdf.Line(plotX, top, plotX, top+float64(n)*barSlot)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(top + float64(n)*barSlot + 4)
}

// histogram draws the distribution of values in equal-width bins
func (d *document) histogram(title, xLabel string, values []float64) {
	d.ensureSpace(chartHeight)
	top := d.chartTitle(title)

	sorted := finite(values)
	if len(sorted) == 0 {
		d.noData(top)
		return
	}
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := floats.Span(make([]float64, histogramBins+1), lo, hi)
	dividers[histogramBins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	p := d.standardArea(top, lo, hi, 0, floats.Max(counts)*1.1)
	d.axes(p, xLabel, "Trips")

	d.pdf.SetFillColor(colorBar[0], colorBar[1], colorBar[2])
	d.pdf.SetDrawColor(255, 255, 255)
	d.pdf.SetLineWidth(0.1)
	for i, c := range counts {
		if c == 0 {
			continue
		}
		x0, x1 := p.px(dividers[i]), p.px(math.Min(dividers[i+1], hi))
		y := p.py(c)
		d.pdf.Rect(x0, y, x1-x0, p.y+p.h-y, "FD")
	}
	d.pdf.SetY(p.y + p.h + 14)
}

// scatter plots ys against xs. Pairs with a NaN are skipped and large
// inputs are thinned to an even sample.
func (d *document) scatter(title, xLabel, yLabel string, xs, ys []float64) {
	d.ensureSpace(chartHeight)
	top := d.chartTitle(title)

	var px, py []float64
	for i := range xs {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			px = append(px, xs[i])
			py = append(py, ys[i])
		}
	}
	if len(px) == 0 {
		d.noData(top)
		return
	}

	xMin, xMax := padRange(floats.Min(px), floats.Max(px))
	yMin, yMax := padRange(floats.Min(py), floats.Max(py))
	p := d.standardArea(top, xMin, xMax, yMin, yMax)
	d.axes(p, xLabel, yLabel)

	stride := 1
	if len(px) > maxScatterDots {
		stride = (len(px) + maxScatterDots - 1) / maxScatterDots
	}
	d.pdf.SetFillColor(colorBar[0], colorBar[1], colorBar[2])
	d.pdf.SetAlpha(0.5, "Normal")
	for i := 0; i < len(px); i += stride {
		d.pdf.Circle(p.px(px[i]), p.py(py[i]), 0.6, "F")
	}
	d.pdf.SetAlpha(1, "Normal")
	d.pdf.SetY(p.y + p.h + 14)
}

type boxPanel struct {
	label string
	stats analytics.Stats
}

// boxPlots draws one box-and-whisker panel per entry, each on its own scale.
// Whiskers span min to max.
func (d *document) boxPlots(title string, panels []boxPanel) {
	d.ensureSpace(chartHeight)
	top := d.chartTitle(title)
	pdf := d.pdf

	slot := d.contentWidth() / float64(len(panels))
	for i, panel := range panels {
		s := panel.stats
		x := marginSide + float64(i)*slot
		if math.IsNaN(s.Min) {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetXY(x, top+30)
			pdf.CellFormat(slot, 6, "No data", "", 0, "C", false, 0, "")
			continue
		}

		yMin, yMax := padRange(s.Min, s.Max)
		p := plotArea{x: x + 18, y: top + 2, w: slot - 26, h: chartHeight - 30, xMin: 0, xMax: 1, yMin: yMin, yMax: yMax}
		d.axesY(p, panel.label)

		cx := p.x + p.w/2
		half := p.w / 4
		pdf.SetDrawColor(colorAxis[0], colorAxis[1], colorAxis[2])
		pdf.SetLineWidth(0.3)
		pdf.Line(cx, p.py(s.Min), cx, p.py(s.P25))
		pdf.Line(cx, p.py(s.P75), cx, p.py(s.Max))
		pdf.Line(cx-half/2, p.py(s.Min), cx+half/2, p.py(s.Min))
		pdf.Line(cx-half/2, p.py(s.Max), cx+half/2, p.py(s.Max))

		pdf.SetFillColor(colorBar[0], colorBar[1], colorBar[2])
		pdf.Rect(cx-half, p.py(s.P75), 2*half, p.py(s.P25)-p.py(s.P75), "FD")
		pdf.SetDrawColor(255, 165, 0)
		pdf.SetLineWidth(0.6)
		pdf.Line(cx-half, p.py(s.P50), cx+half, p.py(s.P50))
	}
	pdf.SetLineWidth(0.2)
	pdf.SetY(top + chartHeight - 14)
}

// axesY draws a frame with value ticks on the left and the label underneath
func (d *document) axesY(p plotArea, label string) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "", tickFontSize)
	pdf.SetTextColor(colorAxis[0], colorAxis[1], colorAxis[2])
	step := (p.yMax - p.yMin) / (tickCount - 1)
	for i := 0; i < tickCount; i++ {
		v := p.yMin + float64(i)*step
		y := p.py(v)
		pdf.SetDrawColor(colorGrid[0], colorGrid[1], colorGrid[2])
		pdf.SetLineWidth(0.1)
		pdf.Line(p.x, y, p.x+p.w, y)
		t := FormatNumber(v, tickPlaces(step))
		pdf.Text(p.x-pdf.GetStringWidth(t)-1.5, y+1, t)
	}
	pdf.SetDrawColor(colorAxis[0], colorAxis[1], colorAxis[2])
	pdf.SetLineWidth(0.3)
	pdf.Rect(p.x, p.y, p.w, p.h, "D")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.Text(p.x+p.w/2-pdf.GetStringWidth(label)/2, p.y+p.h+5, d.tr(label))
	pdf.SetTextColor(0, 0, 0)
}

// standardArea reserves the standard chart rectangle below top
func (d *document) standardArea(top, xMin, xMax, yMin, yMax float64) plotArea {
	return plotArea{
		x:    marginSide + 18,
		y:    top + 2,
		w:    d.contentWidth() - 24,
		h:    chartHeight - 30,
		xMin: xMin,
		xMax: xMax,
		yMin: yMin,
		yMax: yMax,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
