package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hypermart-dashboard/internal/analytics"
	"hypermart-dashboard/internal/config"
	"hypermart-dashboard/internal/dataset"
	"hypermart-dashboard/internal/errors"
	"hypermart-dashboard/internal/models"
	"hypermart-dashboard/internal/presenter"
)

const (
	topProductsLimit = 20
	dailyLimit       = 30
)

// Dashboard owns one session's loaded dataset and turns filter state into
// render payloads. The dataset is immutable after load; every Render call is
// a pure pass over it, so concurrent readers need only the snapshot lock.
type Dashboard struct {
	mu     sync.RWMutex
	ds     *dataset.Dataset
	loader *dataset.Loader
	csv    string
	fmt    presenter.Formatter
	logger *slog.Logger
}

func NewDashboard(cfg config.DatasetConfig, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		loader: dataset.NewLoader(dataset.NewSchema(cfg.Columns), cfg.CacheDir, logger),
		csv:    cfg.CSVFile,
		fmt:    presenter.NewFormatter(cfg.Currency),
		logger: logger,
	}
}

// Load reads the configured CSV. Loader failures leave the previous dataset
// (if any) untouched.
func (d *Dashboard) Load(ctx context.Context) error {
	ds, err := d.loader.Load(ctx, d.csv)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.ds = ds
	d.mu.Unlock()

	d.logger.Info("dashboard dataset ready", "records", ds.Len(), "skipped", ds.Skipped())
	return nil
}

// SetData installs an in-memory dataset, bypassing the file loader.
func (d *Dashboard) SetData(rows []models.Transaction) {
	d.mu.Lock()
	d.ds = dataset.FromRows(rows)
	d.mu.Unlock()
}

func (d *Dashboard) snapshot() (*dataset.Dataset, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.ds == nil {
		return nil, errors.ServiceUnavailable("dataset is not loaded")
	}
	return d.ds, nil
}

func (d *Dashboard) view(f dataset.FilterSet) (dataset.View, *dataset.Dataset, error) {
	ds, err := d.snapshot()
	if err != nil {
		return dataset.View{}, nil, err
	}
	return ds.Filter(f), ds, nil
}

// Render produces the complete payload for one pass: every panel computed
// from the same filtered view.
func (d *Dashboard) Render(f dataset.FilterSet) (*presenter.Dashboard, error) {
	v, ds, err := d.view(f)
	if err != nil {
		return nil, err
	}

	return &presenter.Dashboard{
		Overview:     analytics.Overview(v),
		MonthlyTrend: d.fmt.MonthlyTrendPanel(analytics.MonthlyTrend(v)),
		ChannelSplit: d.fmt.ChannelSplitPanel(analytics.ChannelSplit(v)),
		Weekday:      d.fmt.WeekdayPanel(analytics.WeekdayBreakdown(v)),
		Geography:    d.fmt.GeoPanel(analytics.GeoBreakdown(v)),
		AOVByNation:  d.fmt.AOVPanel("AOV by Nationality", analytics.AOVByNationality(v)),
		AOVByAge:     d.fmt.AOVPanel("AOV by Age Band", analytics.AOVByAgeBand(v)),
		Segments:     d.fmt.SegmentsPanel(analytics.ValueSegments(v)),
		TopProducts:  d.fmt.TopProductsPanel(analytics.TopProducts(v, topProductsLimit)),
		Daily:        d.fmt.DailyPanel(analytics.DailyPerformance(v, dailyLimit)),
		Dimensions:   analytics.Dimensions(ds.All()),
		MatchedRows:  v.Len(),
		TotalRows:    ds.Len(),
	}, nil
}

func (d *Dashboard) Overview(f dataset.FilterSet) (models.Overview, error) {
	v, _, err := d.view(f)
	if err != nil {
		return models.Overview{}, err
	}
	return analytics.Overview(v), nil
}

func (d *Dashboard) MonthlyTrend(f dataset.FilterSet) (presenter.Panel, error) {
	v, _, err := d.view(f)
	if err != nil {
		return presenter.Panel{}, err
	}
	return d.fmt.MonthlyTrendPanel(analytics.MonthlyTrend(v)), nil
}

func (d *Dashboard) ChannelSplit(f dataset.FilterSet) (presenter.Panel, error) {
	v, _, err := d.view(f)
	if err != nil {
		return presenter.Panel{}, err
	}
	return d.fmt.ChannelSplitPanel(analytics.ChannelSplit(v)), nil
}

func (d *Dashboard) Weekday(f dataset.FilterSet) (presenter.Panel, error) {
	v, _, err := d.view(f)
	if err != nil {
		return presenter.Panel{}, err
	}
	return d.fmt.WeekdayPanel(analytics.WeekdayBreakdown(v)), nil
}

func (d *Dashboard) Geography(f dataset.FilterSet) (presenter.Panel, error) {
	v, _, err := d.view(f)
	if err != nil {
		return presenter.Panel{}, err
	}
	return d.fmt.GeoPanel(analytics.GeoBreakdown(v)), nil
}

// AOV returns both segmentations of average order value.
type AOVPanels struct {
	ByNationality presenter.Panel `json:"by_nationality"`
	ByAgeBand     presenter.Panel `json:"by_age_band"`
}

func (d *Dashboard) AOV(f dataset.FilterSet) (AOVPanels, error) {
	v, _, err := d.view(f)
	if err != nil {
		return AOVPanels{}, err
	}
	return AOVPanels{
		ByNationality: d.fmt.AOVPanel("AOV by Nationality", analytics.AOVByNationality(v)),
		ByAgeBand:     d.fmt.AOVPanel("AOV by Age Band", analytics.AOVByAgeBand(v)),
	}, nil
}

func (d *Dashboard) Segments(f dataset.FilterSet) (presenter.Panel, error) {
	v, _, err := d.view(f)
	if err != nil {
		return presenter.Panel{}, err
	}
	return d.fmt.SegmentsPanel(analytics.ValueSegments(v)), nil
}

func (d *Dashboard) TopProducts(f dataset.FilterSet) (presenter.Panel, error) {
	v, _, err := d.view(f)
	if err != nil {
		return presenter.Panel{}, err
	}
	return d.fmt.TopProductsPanel(analytics.TopProducts(v, topProductsLimit)), nil
}

func (d *Dashboard) Daily(f dataset.FilterSet) (presenter.Panel, error) {
	v, _, err := d.view(f)
	if err != nil {
		return presenter.Panel{}, err
	}
	return d.fmt.DailyPanel(analytics.DailyPerformance(v, dailyLimit)), nil
}

// Dimensions lists distinct filter-widget values over the whole dataset,
// never the filtered view, so widgets keep all their options.
func (d *Dashboard) Dimensions() (models.DimensionValues, error) {
	ds, err := d.snapshot()
	if err != nil {
		return models.DimensionValues{}, err
	}
	return analytics.Dimensions(ds.All()), nil
}

// Stats reports load metadata for the admin surface.
func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.ds == nil {
		return map[string]any{"loaded": false}
	}
	return map[string]any{
		"loaded":       true,
		"record_count": d.ds.Len(),
		"skipped_rows": d.ds.Skipped(),
		"source":       d.ds.Source(),
		"loaded_at":    d.ds.LoadedAt().Format(time.RFC3339),
	}
}
