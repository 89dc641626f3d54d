package dataset

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hypermart-dashboard/internal/errors"
	"hypermart-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v1"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
}

// Dataset is the immutable in-memory table one session works against.
// Filtering never mutates it; every pass derives index views instead.
type Dataset struct {
	rows     []models.Transaction
	skipped  int64
	source   string
	loadedAt time.Time
}

func (d *Dataset) Len() int {
	return len(d.rows)
}

// Skipped reports rows dropped for unparseable date or sales values.
func (d *Dataset) Skipped() int64 {
	return d.skipped
}

func (d *Dataset) Source() string {
	return d.source
}

func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// Loader reads the source CSV into a Dataset, caching the parsed snapshot
// on disk so repeated sessions against an unchanged file skip the parse.
type Loader struct {
	schema   Schema
	cacheDir string
	logger   *slog.Logger
}

func NewLoader(schema Schema, cacheDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		schema:   schema,
		cacheDir: cacheDir,
		logger:   logger,
	}
}

// Load produces a Dataset from the file at path, or fails without a partial
// dataset when the required columns are missing or nothing parses.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	if cached, err := l.loadFromCache(path); err == nil {
		if info, err := os.Stat(path); err == nil && info.ModTime().Before(cached.loadedAt) {
			l.logger.Info("dataset loaded from cache", "records", cached.Len(), "source", path)
			return cached, nil
		}
	}

	start := time.Now()
	ds, err := l.parseFile(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := l.saveToCache(ds); err != nil {
		l.logger.Warn("failed to save dataset cache", "error", err)
	}

	l.logger.Info("dataset parsed",
		"records", ds.Len(),
		"skipped", ds.Skipped(),
		"duration", time.Since(start),
		"source", path,
	)
	return ds, nil
}

func (l *Loader) parseFile(ctx context.Context, path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.DataFormatWrap(err, "open dataset file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.DataFormatWrap(err, "read dataset header")
	}

	cols, err := resolveColumns(headers, l.schema)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{source: path, loadedAt: time.Now()}

	batch := make([][]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		rows, skipped, err := parseBatch(ctx, batch, cols)
		if err != nil {
			return err
		}
		ds.rows = append(ds.rows, rows...)
		ds.skipped += skipped
		batch = batch[:0]
		return nil
	}

	rowCount := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			ds.skipped++
			continue
		}
		rowCount++
		batch = append(batch, record)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if rowCount > 0 && len(ds.rows) == 0 {
		return nil, errors.DataFormat("no row has a parseable date and sales amount")
	}

	return ds, nil
}

// parseBatch decodes a batch of raw records concurrently. Order within the
// dataset follows batch order, which is enough for the aggregations: every
// summary re-sorts by its own dimension.
func parseBatch(ctx context.Context, batch [][]string, cols columnMap) ([]models.Transaction, int64, error) {
	type parsed struct {
		tx    models.Transaction
		valid bool
	}

	results := make([]parsed, len(batch))

	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for i, record := range batch {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			tx, err := parseRecord(record, cols)
			if err != nil {
				return nil // row skipped, counted below
			}
			results[i] = parsed{tx: tx, valid: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	rows := make([]models.Transaction, 0, len(batch))
	var skipped int64
	for _, r := range results {
		if r.valid {
			rows = append(rows, r.tx)
		} else {
			skipped++
		}
	}
	return rows, skipped, nil
}

func parseRecord(record []string, cols columnMap) (models.Transaction, error) {
	date, err := parseDate(cell(record, cols, FieldDate))
	if err != nil {
		return models.Transaction{}, err
	}

	amount, err := strconv.ParseFloat(cell(record, cols, FieldSales), 64)
	if err != nil {
		return models.Transaction{}, err
	}

	return models.Transaction{
		Date:        date,
		Amount:      amount,
		Department:  cell(record, cols, FieldDepartment),
		Category:    cell(record, cols, FieldCategory),
		Nationality: cell(record, cols, FieldNationality),
		Age:         parseAge(cell(record, cols, FieldAge)),
		City:        cell(record, cols, FieldCity),
		Zone:        cell(record, cols, FieldZone),
		Channel:     cell(record, cols, FieldChannel),
		Product:     cell(record, cols, FieldProduct),
	}, nil
}

func cell(record []string, cols columnMap, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func parseAge(value string) int {
	age, err := strconv.Atoi(value)
	if err != nil || age < 0 {
		return models.AgeUnknown
	}
	return age
}

// Cache management

type snapshot struct {
	Rows     []models.Transaction
	Skipped  int64
	Source   string
	LoadedAt time.Time
}

func (l *Loader) cacheFilename(path string) string {
	name := strings.ReplaceAll(path, string(os.PathSeparator), "_")
	return filepath.Join(l.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (l *Loader) saveToCache(ds *Dataset) error {
	if l.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(l.cacheFilename(ds.source))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(snapshot{
		Rows:     ds.rows,
		Skipped:  ds.skipped,
		Source:   ds.source,
		LoadedAt: ds.loadedAt,
	})
}

func (l *Loader) loadFromCache(path string) (*Dataset, error) {
	if l.cacheDir == "" {
		return nil, os.ErrNotExist
	}
	file, err := os.Open(l.cacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}

	return &Dataset{
		rows:     snap.Rows,
		skipped:  snap.Skipped,
		source:   snap.Source,
		loadedAt: snap.LoadedAt,
	}, nil
}

// FromRows builds a Dataset directly from records, bypassing the file path.
func FromRows(rows []models.Transaction) *Dataset {
	return &Dataset{
		rows:     rows,
		loadedAt: time.Now(),
	}
}
