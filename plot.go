package main

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// savePlotPNG renders a plot to a 300 DPI PNG.
func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(300),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	defer bw.Flush()

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}

func traceLine(times, values []float32, c color.Color, dashed bool) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(times))
	for i := range times {
		pts[i].X = float64(times[i])
		pts[i].Y = float64(values[i])
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	if dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}
	return line, nil
}

// writeTemperaturePlot draws the surface temperature traces of a run, with
// the gas-phase reference overlaid as dashed lines when available.
func writeTemperaturePlot(dir, name string, trace *temperatureTrace) error {
	p := plot.New()
	p.Title.Text = "Wall Surface Temperatures"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "temperature (°C)"
	p.Legend.Top = true

	front, err := traceLine(trace.time, trace.simFront, color.RGBA{R: 200, A: 255}, false)
	if err != nil {
		return err
	}
	back, err := traceLine(trace.time, trace.simBack, color.RGBA{B: 200, A: 255}, false)
	if err != nil {
		return err
	}
	p.Add(front, back)
	p.Legend.Add("front", front)
	p.Legend.Add("back", back)

	if trace.hasRef {
		refFront, err := traceLine(trace.time, trace.refFront, color.RGBA{R: 200, A: 255}, true)
		if err != nil {
			return err
		}
		refBack, err := traceLine(trace.time, trace.refBack, color.RGBA{B: 200, A: 255}, true)
		if err != nil {
			return err
		}
		p.Add(refFront, refBack)
		p.Legend.Add("front reference", refFront)
		p.Legend.Add("back reference", refBack)
	}

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(dir, name+".png"))
}

// writeBenchmarkPlot draws the median run times of one benchmark as a bar
// chart over the backends.
func writeBenchmarkPlot(dir, label string, results []benchmarkResult) error {
	if len(results) == 0 {
		return nil
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Benchmark %s (%d elements)", label, results[0].size)
	p.Y.Label.Text = "median run time (s)"

	medians := make(plotter.Values, len(results))
	names := make([]string, len(results))
	for i, r := range results {
		medians[i] = r.median()
		names[i] = r.method
	}
	bars, err := plotter.NewBarChart(medians, vg.Points(30))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 60, G: 120, B: 200, A: 255}
	p.Add(bars)
	p.NominalX(names...)

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(dir, "benchmark_"+label+".png"))
}
