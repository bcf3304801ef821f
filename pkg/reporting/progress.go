package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OutputFormat selects how ProgressReporter renders events.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatTUI  OutputFormat = "tui"
)

// ProgressReporter reports orchestrator run progress: per-day pool passes,
// straggler regrades, and worker failures. Adapted from the teacher's
// ProgressReporter (format switch over text/json/tui) with the chaos-test
// event vocabulary (state transitions, fault injection, success criteria)
// replaced by the day/pass/straggler vocabulary of the station pipeline.
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
}

// NewProgressReporter creates a reporter for the given output format.
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{
		format: format,
		logger: logger,
	}
}

// PassResult summarizes one pool pass over a day's station list.
type PassResult struct {
	Date       time.Time `json:"date"`
	Pass       int       `json:"pass"`
	Total      int       `json:"total"`
	Failed     int       `json:"failed"`
	Stragglers int       `json:"stragglers"`
}

// DaySummary summarizes a completed day once no stations or stragglers
// remain, or the pass budget was exhausted.
type DaySummary struct {
	Date      time.Time     `json:"date"`
	Passes    int           `json:"passes"`
	Elapsed   time.Duration `json:"elapsed"`
	Exhausted bool          `json:"exhausted"`
}

// ReportDayStart reports that a day's processing has begun.
func (pr *ProgressReporter) ReportDayStart(date time.Time) {
	switch pr.format {
	case FormatJSON:
		pr.printJSON("day_start", map[string]interface{}{"date": date})
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("📅 %s: starting\n", date.Format("2006-01-02"))
	default:
		fmt.Printf("[DAY] %s: starting\n", date.Format("2006-01-02"))
	}
}

// ReportPassResult reports the outcome of one pool pass.
func (pr *ProgressReporter) ReportPassResult(pass PassResult) {
	switch pr.format {
	case FormatJSON:
		pr.printJSON("pass_result", pass)
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("🔄 %s pass %d: %d stations, %d failed, %d stragglers\n",
			pass.Date.Format("2006-01-02"), pass.Pass, pass.Total, pass.Failed, pass.Stragglers)
	default:
		fmt.Printf("[PASS] %s pass %d: %d stations, %d failed, %d stragglers\n",
			pass.Date.Format("2006-01-02"), pass.Pass, pass.Total, pass.Failed, pass.Stragglers)
	}
}

// ReportWorkerFailure reports a single station worker failure.
func (pr *ProgressReporter) ReportWorkerFailure(station string, date time.Time, err error) {
	switch pr.format {
	case FormatJSON:
		pr.printJSON("worker_failure", map[string]interface{}{
			"station": station,
			"date":    date,
			"error":   err.Error(),
		})
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("⚠️  %s failed on %s: %v\n", station, date.Format("2006-01-02"), err)
	default:
		fmt.Printf("[FAIL] %s %s: %v\n", station, date.Format("2006-01-02"), err)
	}
}

// ReportStragglers reports the straggler pass for a day.
func (pr *ProgressReporter) ReportStragglers(date time.Time, codes []string) {
	if len(codes) == 0 {
		return
	}
	switch pr.format {
	case FormatJSON:
		pr.printJSON("stragglers", map[string]interface{}{"date": date, "stations": codes})
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("🧹 %s: regrading %d straggler(s): %s\n", date.Format("2006-01-02"), len(codes), strings.Join(codes, ", "))
	default:
		fmt.Printf("[STRAGGLERS] %s: %s\n", date.Format("2006-01-02"), strings.Join(codes, ", "))
	}
}

// ReportDayComplete reports a day's completion summary.
func (pr *ProgressReporter) ReportDayComplete(summary DaySummary) {
	switch pr.format {
	case FormatJSON:
		pr.printJSON("day_complete", summary)
	case FormatTUI:
		pr.clearLine()
		pr.printDaySummary(summary)
	default:
		pr.printDaySummary(summary)
	}
}

// ReportEmergencyStop reports that a run was cut short by an emergency stop.
func (pr *ProgressReporter) ReportEmergencyStop(reason string) {
	switch pr.format {
	case FormatJSON:
		pr.printJSON("emergency_stop", map[string]interface{}{"reason": reason})
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("🛑 Emergency stop: %s\n", reason)
	default:
		fmt.Printf("[STOP] Emergency stop: %s\n", reason)
	}
}

func (pr *ProgressReporter) printJSON(event string, payload interface{}) {
	data, err := json.Marshal(struct {
		Event     string      `json:"event"`
		Timestamp time.Time   `json:"timestamp"`
		Data      interface{} `json:"data"`
	}{Event: event, Timestamp: time.Now(), Data: payload})
	if err != nil {
		if pr.logger != nil {
			pr.logger.Error("failed to marshal progress event", "event", event, "error", err)
		}
		return
	}
	fmt.Println(string(data))
}

func (pr *ProgressReporter) printDaySummary(summary DaySummary) {
	status := "complete"
	if summary.Exhausted {
		status = "pass budget exhausted"
	}
	fmt.Printf("[DAY] %s %s after %d pass(es) in %s\n",
		summary.Date.Format("2006-01-02"), status, summary.Passes, summary.Elapsed.Round(time.Second))
}

// clearLine clears the current line, used by the tui format between events.
func (pr *ProgressReporter) clearLine() {
	fmt.Print("\033[K")
}
