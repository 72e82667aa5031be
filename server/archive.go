package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/finhall/snakemind/store"
)

// decisionArchiver buffers decision rows and flushes them as parquet
// batches in the background, so archiving never blocks a move response.
type decisionArchiver struct {
	outDir     string
	flushRows  int
	flushEvery time.Duration
	logger     *slog.Logger

	rows chan store.DecisionRow
	done chan struct{}
	wg   sync.WaitGroup
}

func newDecisionArchiver(outDir string, flushRows int, flushEvery time.Duration, logger *slog.Logger) (*decisionArchiver, error) {
	if flushRows <= 0 {
		flushRows = 5000
	}
	if flushEvery <= 0 {
		flushEvery = 15 * time.Minute
	}

	// Fail early on an unwritable directory rather than on first flush.
	probe, err := store.NewBatchWriter[store.DecisionRow](outDir, "decision_row_v1")
	if err != nil {
		return nil, err
	}
	if _, _, _, err := probe.Finalize(); err != nil {
		return nil, err
	}

	a := &decisionArchiver{
		outDir:     outDir,
		flushRows:  flushRows,
		flushEvery: flushEvery,
		logger:     logger,
		rows:       make(chan store.DecisionRow, 1024),
		done:       make(chan struct{}),
	}
	a.wg.Add(1)
	go a.loop()
	return a, nil
}

// Add enqueues one row. A full buffer drops the row instead of stalling
// the request path; the decision log is best-effort.
func (a *decisionArchiver) Add(row store.DecisionRow) {
	select {
	case a.rows <- row:
	default:
		a.logger.Warn("decision archive buffer full, dropping row", "game_id", row.GameID)
	}
}

func (a *decisionArchiver) Close() {
	close(a.done)
	a.wg.Wait()
}

func (a *decisionArchiver) loop() {
	defer a.wg.Done()

	var writer *store.BatchWriter[store.DecisionRow]
	ticker := time.NewTicker(a.flushEvery)
	defer ticker.Stop()

	flush := func() {
		if writer == nil {
			return
		}
		path, rows, _, err := writer.Finalize()
		writer = nil
		if err != nil {
			a.logger.Error("flush decision archive", "err", err)
			return
		}
		if rows > 0 {
			a.logger.Info("flushed decision archive", "path", path, "rows", rows)
		}
	}

	write := func(row store.DecisionRow) {
		if writer == nil {
			w, err := store.NewBatchWriter[store.DecisionRow](a.outDir, "decision_row_v1")
			if err != nil {
				a.logger.Error("open decision batch", "err", err)
				return
			}
			writer = w
		}
		if err := writer.WriteRows([]store.DecisionRow{row}); err != nil {
			a.logger.Error("write decision row", "err", err)
			return
		}
		if writer.BufferedRows() >= a.flushRows {
			flush()
		}
	}

	for {
		select {
		case row := <-a.rows:
			write(row)
		case <-ticker.C:
			flush()
		case <-a.done:
			// Drain whatever is queued before the final flush.
			for {
				select {
				case row := <-a.rows:
					write(row)
				default:
					flush()
					return
				}
			}
		}
	}
}
