// Package productivity ranks admins by the cars they add and the errors they
// make, and draws the weekly chart.
package productivity

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"golang.org/x/sync/errgroup"

	"caradmin/internal/domain/stats"
)

const (
	topShown         = 5
	bottomShown      = 5
	problematicShown = 3
	weekDays         = 7
	dayLayout        = "2006-01-02"
)

type Upstream interface {
	Productivity(ctx context.Context) ([]stats.AdminProductivity, error)
	AdminProductivity(ctx context.Context, adminID int64) (*stats.AdminProductivity, error)
	CarStats(ctx context.Context) (*stats.CarStats, error)
	ErrorStats(ctx context.Context) (*stats.ErrorStats, error)
}

type Service struct {
	now func() time.Time
}

func NewService() *Service {
	return &Service{now: time.Now}
}

// Level is the verbal grade of a productivity score.
func Level(score int) string {
	switch {
	case score >= 80:
		return "Отлично"
	case score >= 60:
		return "Хорошо"
	case score >= 40:
		return "Удовлетворительно"
	default:
		return "Требует внимания"
	}
}

// LevelClass is the css class the console paints the grade with.
func LevelClass(score int) string {
	switch {
	case score >= 80:
		return "text-success"
	case score >= 60:
		return "text-warning"
	case score >= 40:
		return "text-info"
	default:
		return "text-danger"
	}
}

func newRow(a *stats.AdminProductivity) Row {
	return Row{
		ID:                a.ID,
		Name:              a.DisplayName(),
		Email:             a.Email,
		CarsAdded:         a.CarsAdded,
		SoldCars:          a.SoldCars,
		ErrorsCount:       a.ErrorsCount,
		ProductivityScore: a.ProductivityScore,
		Level:             Level(a.ProductivityScore),
		LevelClass:        LevelClass(a.ProductivityScore),
		LastActivity:      a.LastActivity,
	}
}

// Report loads the three stats endpoints at once.
func (s *Service) Report(ctx context.Context, api Upstream) (*Report, error) {
	var (
		admins []stats.AdminProductivity
		cars   *stats.CarStats
		errs   *stats.ErrorStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if admins, err = api.Productivity(gctx); err != nil {
			return fmt.Errorf("productivity: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if cars, err = api.CarStats(gctx); err != nil {
			return fmt.Errorf("car stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if errs, err = api.ErrorStats(gctx); err != nil {
			return fmt.Errorf("error stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildReport(admins, cars, errs, s.now()), nil
}

func buildReport(admins []stats.AdminProductivity, cars *stats.CarStats, errs *stats.ErrorStats, now time.Time) *Report {
	rows := make([]Row, 0, len(admins))
	for i := range admins {
		row := newRow(&admins[i])
		// счётчик из /stats/errors точнее, если он есть
		if errs != nil {
			if n, ok := errs.ByAdmin[row.ID]; ok {
				row.ErrorsCount = n
			}
		}
		rows = append(rows, row)
	}

	r := &Report{
		Admins:      rows,
		Top:         ranked(rows, topShown, func(a, b Row) bool { return a.CarsAdded > b.CarsAdded }),
		Bottom:      ranked(rows, bottomShown, func(a, b Row) bool { return a.CarsAdded < b.CarsAdded }),
		Problematic: ranked(rows, problematicShown, func(a, b Row) bool { return a.ErrorsCount > b.ErrorsCount }),
		Week:        week(cars, now),
		Cars:        cars,
		Errors:      errs,
	}
	return r
}

// ranked returns the first n rows of a stable sort; ties keep backend order.
func ranked(rows []Row, n int, less func(a, b Row) bool) []Row {
	out := append([]Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []Row{}
	}
	return out
}

// week is the last seven days ending today; days without data are zero.
func week(cars *stats.CarStats, now time.Time) []Point {
	counts := map[string]int{}
	if cars != nil {
		for _, d := range cars.Daily {
			counts[d.Date] += d.Count
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	points := make([]Point, 0, weekDays)
	for i := weekDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(dayLayout)
		points = append(points, Point{Date: key, Label: dayLabel(day), Count: counts[key]})
	}
	return points
}

var shortMonths = [...]string{"янв.", "февр.", "мар.", "апр.", "мая", "июн.", "июл.", "авг.", "сент.", "окт.", "нояб.", "дек."}

// dayLabel is a short ru-RU date, e.g. "5 мар."
func dayLabel(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), shortMonths[t.Month()-1])
}

// Admin returns the detailed stats of one admin.
func (s *Service) Admin(ctx context.Context, api Upstream, id int64) (*Row, *stats.AdminProductivity, error) {
	a, err := api.AdminProductivity(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	row := newRow(a)
	return &row, a, nil
}

// Chart renders the report as a standalone HTML page: cars added over the
// week and the errors of the most problematic admins.
func (s *Service) Chart(r *Report) (string, error) {
	labels := make([]string, len(r.Week))
	added := make([]opts.LineData, len(r.Week))
	for i, p := range r.Week {
		labels[i] = p.Label
		added[i] = opts.LineData{Name: p.Date, Value: p.Count}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions("Динамика добавления автомобилей")...)
	line.SetXAxis(labels)
	line.AddSeries("Автомобили добавлено", added)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	names := make([]string, len(r.Problematic))
	errs := make([]opts.BarData, len(r.Problematic))
	for i, row := range r.Problematic {
		names[i] = row.Name
		errs[i] = opts.BarData{Name: row.Name, Value: row.ErrorsCount}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions("Распределение ошибок")...)
	bar.SetXAxis(names)
	bar.AddSeries("Ошибки", errs)

	page := components.NewPage()
	page.PageTitle = "Продуктивность админов"
	page.AddCharts(line, bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return "", fmt.Errorf("render productivity chart: %w", err)
	}
	return buf.String(), nil
}

func globalOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}
