package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/studiowebux/restdeck/internal/app"
	"github.com/studiowebux/restdeck/internal/executor"
	"github.com/studiowebux/restdeck/internal/registry"
	"github.com/studiowebux/restdeck/internal/types"
	"github.com/studiowebux/restdeck/internal/view"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// maxCellWidth keeps long text such as post bodies from blowing up the table
const maxCellWidth = 48

// DumpOptions contains options for dumping collections
type DumpOptions struct {
	Collections []string
	Output      string // table, json, yaml
}

// Dump fetches the named collections concurrently and prints them in the order given
func Dump(ctx context.Context, w io.Writer, reg *registry.Registry, fetcher app.Fetcher, opts DumpOptions) error {
	if len(opts.Collections) == 0 {
		return fmt.Errorf("no collection given")
	}
	format := opts.Output
	if format == "" {
		format = FormatTable
	}
	if format != FormatTable && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("unsupported output format %q (use table, json or yaml)", format)
	}

	collections := make([]types.Collection, len(opts.Collections))
	for i, key := range opts.Collections {
		resolved, err := reg.Resolve(key)
		if err != nil {
			return fmt.Errorf("%w: %q", app.ErrInvalidCollection, key)
		}
		collections[i], _ = reg.Lookup(resolved)
	}

	results := make([]*types.FetchResult, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range collections {
		g.Go(func() error {
			result, err := fetcher.Fetch(gctx, c)
			if err != nil {
				return fmt.Errorf("%s: %s (%w)", c.Key, app.FetchFailedMessage, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	switch format {
	case FormatJSON, FormatYAML:
		return writeStructured(w, format, collections, results)
	default:
		for i, c := range collections {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeRecordTable(w, c, results[i])
		}
		return nil
	}
}

func writeStructured(w io.Writer, format string, collections []types.Collection, results []*types.FetchResult) error {
	var doc any
	if len(collections) == 1 {
		doc = plainRecords(results[0].Records)
	} else {
		out := make(map[string]any, len(collections))
		for i, c := range collections {
			out[c.Key] = plainRecords(results[i].Records)
		}
		doc = out
	}

	if format == FormatJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// plainRecords converts decoded json.Number values into ints or floats
// so YAML output shows numbers rather than quoted strings
func plainRecords(records []types.Record) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, r := range records {
		m := make(map[string]any, len(r))
		for k, v := range r {
			m[k] = plainValue(v)
		}
		out[i] = m
	}
	return out
}

func plainValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, x := range val {
			m[k] = plainValue(x)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, x := range val {
			s[i] = plainValue(x)
		}
		return s
	default:
		return v
	}
}

func writeRecordTable(w io.Writer, c types.Collection, result *types.FetchResult) {
	fields := c.DisplayFields()

	headers := []string{"ID"}
	for _, f := range fields {
		headers = append(headers, f.Label)
	}

	rows := make([][]string, 0, len(result.Records))
	for _, rec := range result.Records {
		row := []string{rec.Text(types.IDField)}
		for _, f := range fields {
			row = append(row, truncate(view.Cell(f, rec), maxCellWidth))
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(w, titleStyle.Render(c.Title))
	fmt.Fprintln(w, newTable(headers, rows).String())
	fmt.Fprintln(w, subtleStyle.Render(fmt.Sprintf("%d records • %s • %s",
		len(result.Records),
		executor.FormatDuration(result.Duration),
		executor.FormatSize(result.ResponseSize))))
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// Collections prints the registered collections
func Collections(w io.Writer, reg *registry.Registry) {
	rows := make([][]string, 0)
	for i, c := range reg.All() {
		var fields []string
		for _, f := range c.Fields {
			name := f.Name
			if f.Required {
				name += "*"
			}
			fields = append(fields, name)
		}
		path := c.RecordsPath
		if path == "" {
			path = "@"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), c.Key, c.URL, path, strings.Join(fields, ", ")})
	}

	fmt.Fprintln(w, newTable([]string{"#", "Key", "URL", "Records", "Fields"}, rows).String())
}

// HistorySource is the subset of the history store the CLI reads
type HistorySource interface {
	Load(limit int) ([]types.HistoryEntry, error)
}

// History prints the newest fetch attempts
func History(w io.Writer, src HistorySource, limit int) error {
	entries, err := src.Load(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No fetch history"))
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := strconv.Itoa(e.Status)
		if e.Status == 0 {
			status = "-"
		}
		outcome := "applied"
		switch {
		case e.Discarded:
			outcome = "discarded"
		case e.Error != "":
			outcome = errorStyle.Render(truncate(e.Error, maxCellWidth))
		}
		rows = append(rows, []string{
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Collection,
			status,
			strconv.Itoa(e.RecordCount),
			executor.FormatDuration(e.Duration),
			executor.FormatSize(e.Size),
			outcome,
			shortSession(e.SessionID),
		})
	}

	fmt.Fprintln(w, newTable([]string{"Time", "Collection", "Status", "Records", "Duration", "Size", "Outcome", "Session"}, rows).String())
	return nil
}

func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// StatsSource aggregates the fetch log per collection
type StatsSource interface {
	Stats() ([]types.FetchStats, error)
}

// Stats prints per-collection fetch statistics
func Stats(w io.Writer, src StatsSource) error {
	stats, err := src.Stats()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No fetch history"))
		return nil
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Collection,
			strconv.Itoa(s.TotalFetches),
			strconv.Itoa(s.SuccessCount),
			strconv.Itoa(s.ErrorCount),
			strconv.Itoa(s.NetworkErrors),
			strconv.Itoa(s.Discarded),
			fmt.Sprintf("%s / %s / %s",
				executor.FormatDuration(s.MinDurationMs),
				executor.FormatDuration(int64(s.AvgDurationMs)),
				executor.FormatDuration(s.MaxDurationMs)),
			formatStatusCodes(s.StatusCodes),
			s.LastFetched.Format("2006-01-02 15:04:05"),
		})
	}

	headers := []string{"Collection", "Fetches", "OK", "Errors", "Network", "Discarded", "Min / Avg / Max", "Statuses", "Last"}
	fmt.Fprintln(w, newTable(headers, rows).String())
	return nil
}

// formatStatusCodes renders a status histogram as "200x3 503x1", lowest code first
func formatStatusCodes(codes map[int]int) string {
	keys := make([]int, 0, len(codes))
	for code := range codes {
		keys = append(keys, code)
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, code := range keys {
		label := strconv.Itoa(code)
		if code == 0 {
			label = "ERR"
		}
		parts = append(parts, fmt.Sprintf("%sx%d", label, codes[code]))
	}
	return strings.Join(parts, " ")
}
