package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"whosaid/internal/aggregate"
	"whosaid/internal/logger"
	"whosaid/internal/pipeline"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	colorBackground    = "#0b1020"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorNegative      = "#f87171"
	colorNeutral       = "#fbbf24"
	colorPositive      = "#34d399"
	colorLength        = "#a78bfa"

	// PageFile is the name of the chart page inside the output directory.
	PageFile = "dashboard.html"
	// PageArtifact is the artifact key the page sink records.
	PageArtifact = "page"

	defaultWidth          = 800
	defaultHeight         = 750
	defaultWordCloudLimit = 200
)

// PageOptions size the charts and the word clouds.
type PageOptions struct {
	Dir            string
	Width          int
	Height         int
	WordCloudLimit int
	Stopwords      map[string]struct{}
}

func (o PageOptions) withDefaults() PageOptions {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.WordCloudLimit <= 0 {
		o.WordCloudLimit = defaultWordCloudLimit
	}
	if o.Stopwords == nil {
		o.Stopwords = aggregate.DefaultStopwords
	}
	return o
}

// Page writes the dashboard charts to <Dir>/dashboard.html.
type Page struct {
	opts PageOptions
}

func NewPage(o PageOptions) *Page {
	return &Page{opts: o.withDefaults()}
}

func (p *Page) Name() string { return PageArtifact }

func (p *Page) Render(ctx context.Context, d *pipeline.Dashboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	html, err := BuildPage(d, p.opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(p.opts.Dir, PageFile)
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	d.AddArtifact(PageArtifact, path)
	logger.Infof("Dashboard page written to %s", path)
	return nil
}

// BuildPage renders the four dashboard views into one HTML document.
func BuildPage(d *pipeline.Dashboard, o PageOptions) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("nil dashboard")
	}
	o = o.withDefaults()
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.SetPageTitle("Who said what")

	corpora := d.Corpora()
	page.AddCharts(
		lineCountChart(d, o),
		wordCloud("What do the characters talk about?", corpora.All, o),
		wordCloud(focusTitle(corpora.FocusCharacter), corpora.Focus, o),
		sentimentChart(d.Metrics(), o),
		lengthChart(d.Metrics(), o),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func focusTitle(character string) string {
	if character == "" {
		return "What does the focused character talk about?"
	}
	return fmt.Sprintf("What does %s talk about?", character)
}

func initOpts(o PageOptions) opts.Initialization {
	return opts.Initialization{
		Theme:           types.ThemeWesteros,
		Width:           fmt.Sprintf("%dpx", o.Width),
		Height:          fmt.Sprintf("%dpx", o.Height),
		BackgroundColor: colorBackground,
	}
}

func titleOpts(title string) opts.Title {
	return opts.Title{
		Title:      title,
		Left:       "center",
		TitleStyle: &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
	}
}

func axisOpts() (opts.XAxis, opts.YAxis) {
	return opts.XAxis{
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary, Rotate: 45},
		}, opts.YAxis{
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}},
		}
}

// lineCountChart stacks one series per film; characters are ranked by their
// total across the selection.
func lineCountChart(d *pipeline.Dashboard, o PageOptions) *charts.Bar {
	rows := d.TrimmedLineCounts()
	characters := aggregate.RankByTotal(rows, d.Characters())
	counts := make(map[string]map[string]int)
	for _, r := range rows {
		if counts[r.Film] == nil {
			counts[r.Film] = make(map[string]int)
		}
		counts[r.Film][r.Character] = r.Lines
	}

	x, y := axisOpts()
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o)),
		charts.WithTitleOpts(titleOpts("How many lines does each character say?")),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom", TextStyle: &opts.TextStyle{Color: colorTextSecondary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(x),
		charts.WithYAxisOpts(y),
	)
	bar.SetXAxis(characters)
	for _, film := range d.Transcripts().Films() {
		data := make([]opts.BarData, len(characters))
		for i, c := range characters {
			data[i] = opts.BarData{Name: c, Value: counts[film][c]}
		}
		bar.AddSeries(film, data, charts.WithBarChartOpts(opts.BarChart{Stack: "lines"}))
	}
	return bar
}

func wordCloud(title, text string, o PageOptions) *charts.WordCloud {
	freqs := aggregate.WordFrequencies(text, o.Stopwords, o.WordCloudLimit)
	data := make([]opts.WordCloudData, len(freqs))
	for i, f := range freqs {
		data[i] = opts.WordCloudData{Name: f.Word, Value: f.Count}
	}
	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o)),
		charts.WithTitleOpts(titleOpts(title)),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	wc.AddSeries("words", data, charts.WithWorldCloudChartOpts(opts.WordCloudChart{
		Shape:     "circle",
		SizeRange: []float32{12, 72},
	}))
	return wc
}

func sentimentChart(metrics []aggregate.CharacterMetrics, o PageOptions) *charts.Bar {
	names := make([]string, len(metrics))
	data := make([]opts.BarData, len(metrics))
	for i, m := range metrics {
		names[i] = m.Character
		data[i] = opts.BarData{Name: m.Character, Value: round(m.Sentiment, 4)}
	}
	x, y := axisOpts()
	y.Min = -1
	y.Max = 1
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o)),
		charts.WithTitleOpts(titleOpts("How positive are the characters?")),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			Left:       "right",
			InRange:    &opts.VisualMapInRange{Color: []string{colorNegative, colorNeutral, colorPositive}},
		}),
		charts.WithXAxisOpts(x),
		charts.WithYAxisOpts(y),
	)
	bar.SetXAxis(names)
	bar.AddSeries("sentiment", data)
	return bar
}

func lengthChart(metrics []aggregate.CharacterMetrics, o PageOptions) *charts.Bar {
	names := make([]string, len(metrics))
	data := make([]opts.BarData, len(metrics))
	for i, m := range metrics {
		names[i] = m.Character
		data[i] = opts.BarData{
			Name:      m.Character,
			Value:     round(m.AvgLineLength, 2),
			ItemStyle: &opts.ItemStyle{Color: colorLength},
		}
	}
	x, y := axisOpts()
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o)),
		charts.WithTitleOpts(titleOpts("Average words per line")),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(x),
		charts.WithYAxisOpts(y),
	)
	bar.SetXAxis(names)
	bar.AddSeries("words per line", data)
	return bar
}

func round(val float64, decimals int) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
