package pipeline

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"billfeed/internal"
	"billfeed/internal/config"
	"billfeed/internal/notify"
	"billfeed/internal/source"
	"billfeed/internal/storage"
)

// Runner executes one full pass: fetch, aggregate, export, notify, audit.
type Runner struct {
	cfg     config.Config
	log     zerolog.Logger
	src     source.Source
	channel notify.Channel
	audit   *storage.DB
}

// NewRunner wires a run. channel and audit may be nil when unconfigured.
func NewRunner(cfg config.Config, log zerolog.Logger, src source.Source, channel notify.Channel, audit *storage.DB) *Runner {
	return &Runner{cfg: cfg, log: log, src: src, channel: channel, audit: audit}
}

type RunResult struct {
	RunID        string
	Summary      internal.BatchSummary
	CSVPath      string
	ShortcutPath string
	Exported     bool
	Notified     bool
}

// Run is fail-closed through aggregation: any read or aggregate error aborts
// before a CSV exists. Export and notification errors are logged and the
// remaining steps still run.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	runID := uuid.NewString()
	log := r.log.With().Str("run", runID).Str("date", r.cfg.TargetDate).Logger()

	grid, err := r.src.Fetch(ctx, r.cfg.WorksheetName)
	if err != nil {
		return RunResult{}, err
	}
	if len(grid) == 0 {
		return RunResult{}, &internal.SchemaError{Column: internal.ColImportDate}
	}
	log.Info().Int("rows", len(grid)-1).Str("worksheet", r.cfg.WorksheetName).Msg("worksheet fetched")

	cols, err := source.ResolveColumns(grid[0])
	if err != nil {
		return RunResult{}, err
	}

	res, err := Aggregate(grid, cols, r.cfg.TargetDate, r.cfg.InvoicePrefix, r.cfg.AmountMode)
	if err != nil {
		return RunResult{}, err
	}
	log.Info().
		Int("date_matches", res.Summary.DateMatchCount).
		Int("exported", res.Summary.Count).
		Int64("total_cents", res.Summary.TotalCents).
		Float64("accuracy", res.Summary.AccuracyRate).
		Msg("aggregation done")
	if res.Summary.DateMatchCount > res.Summary.Count {
		log.Warn().
			Float64("accuracy", res.Summary.AccuracyRate).
			Msg("rows without invoice prefix need manual follow-up")
	}

	result := RunResult{
		RunID:   runID,
		Summary: res.Summary,
		CSVPath: filepath.Join(r.cfg.OutputDir, r.cfg.CSVFileName),
	}

	if err := WriteCSV(result.CSVPath, res.Entries); err != nil {
		log.Error().Err(err).Str("path", result.CSVPath).Msg("csv export failed")
	} else {
		result.Exported = true
		log.Info().Str("path", result.CSVPath).Int("rows", len(res.Entries)).Msg("csv written")
	}

	if r.cfg.RedirectURL != "" {
		result.ShortcutPath = filepath.Join(r.cfg.OutputDir, r.cfg.ShortcutFileName)
		if err := WriteShortcut(result.ShortcutPath, r.cfg.RedirectURL); err != nil {
			log.Error().Err(err).Str("path", result.ShortcutPath).Msg("shortcut export failed")
			result.ShortcutPath = ""
		}
	}

	if r.channel != nil {
		if err := r.channel.Send(ctx, FormatSummary(res.Summary)); err != nil {
			log.Warn().Err(err).Msg("summary notification not delivered")
		} else {
			result.Notified = true
			log.Info().Msg("summary notification sent")
		}
	}

	if r.audit != nil {
		if err := r.audit.InsertRun(runID, res.Summary); err != nil {
			log.Warn().Err(err).Msg("run audit insert failed")
		}
	}

	return result, nil
}
