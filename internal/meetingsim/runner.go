package meetingsim

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/use-overseer/Orquesta/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// weekRecord remembers one scheduled week together with the roster holes
// it was scheduled around.
type weekRecord struct {
	Week     string          `json:"week"`
	Excluded []string        `json:"excluded,omitempty"`
	Meeting  MeetingResponse `json:"meeting"`
}

// rejection remembers a lector verdict so verification can check that the
// engine suppressed the person afterwards.
type rejection struct {
	WeekIndex int
	PersonID  int64
}

// Run executes the complete meeting simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	start := config.StartDate
	if start == "" {
		start = nextMonday(time.Now().UTC())
	}

	logger.Get().Info(ctx, "starting orquesta meeting simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("weeks", config.Weeks),
		logger.Int("roster", config.RosterSize),
		logger.Int("rejectEvery", config.RejectEvery),
		logger.String("start", start),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Build the roster and the week plan
	roster := generateRoster(ctx, config.RosterSize)
	dates, err := weekDates(start, config.Weeks)
	if err != nil {
		return fmt.Errorf("week planning failed: %w", err)
	}
	stats.WeeksPlanned = len(dates)

	// Step 3: Schedule week by week, feeding verdicts back between weeks
	records, rejections, err := scheduleWeeks(ctx, config, roster, dates, stats)
	if err != nil {
		return fmt.Errorf("scheduling failed: %w", err)
	}

	// Step 4: Verify rotation, suppression and structural rules
	if err := verifyResults(ctx, roster, records, rejections); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 5: Save the scheduled meetings to file
	if err := saveMeetingsToFile(ctx, config, records); err != nil {
		logger.Get().Warn(ctx, "failed to save meetings to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// scheduleWeeks drives the engine through every planned week. Most weeks
// are accepted wholesale; every RejectEvery-th week the lector is rejected
// instead, which is the signal the verification step later looks for.
func scheduleWeeks(ctx context.Context, config *Config, roster []Candidate, dates []string, stats *Stats) ([]weekRecord, []rejection, error) {
	log.Printf("📅 Scheduling %d weeks against %s...", len(dates), config.BaseURL)

	client := newHTTPClient(config.Timeout, config.Token)
	records := make([]weekRecord, 0, len(dates))
	var rejections []rejection

	for i, week := range dates {
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("context cancelled during scheduling: %w", ctx.Err())
		default:
		}

		excluded := randomAbsence(roster)
		meeting, err := assignWeek(ctx, client, config.BaseURL, MeetingRequest{
			WeekDate:     week,
			Candidates:   roster,
			Activities:   weeklyPlan(i),
			ExcludeNames: excluded,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("week %s: %w", week, err)
		}

		stats.WeeksAssigned++
		for _, a := range meeting.Assignments {
			if a.Publicador != nil {
				stats.SlotsFilled++
			} else {
				stats.SlotsUnfilled++
			}
			if a.Ayudante != nil {
				stats.SlotsFilled++
			}
		}
		records = append(records, weekRecord{Week: week, Excluded: excluded, Meeting: meeting})

		if config.Verbose {
			log.Printf("📋 Week %s: %d slots, excluded %v", week, len(meeting.Assignments), excluded)
		}

		// Verdict for the week. A rejected lector leaves the rest of the
		// meeting unreviewed, as a real overseer report would.
		if config.RejectEvery > 0 && (i+1)%config.RejectEvery == 0 {
			if lector := findRole(meeting, roleLector); lector != nil && lector.Publicador != nil {
				fb := FeedbackRequest{
					WeekDate:  week,
					Resultado: "rechazada",
					Role:      roleLector,
					PersonID:  lector.Publicador.ID,
				}
				if _, err := sendFeedback(ctx, client, config.BaseURL, fb); err != nil {
					stats.FeedbackFailed++
					log.Printf("⚠️  Week %s: lector rejection failed: %v", week, err)
				} else {
					stats.FeedbackRejected++
					rejections = append(rejections, rejection{WeekIndex: i, PersonID: lector.Publicador.ID})
					if config.Verbose {
						log.Printf("👎 Week %s: rejected lector %s", week, lector.Publicador.Nombre)
					}
				}
				continue
			}
		}

		receipt, err := sendFeedback(ctx, client, config.BaseURL, FeedbackRequest{WeekDate: week, Resultado: "aceptada"})
		if err != nil {
			stats.FeedbackFailed++
			log.Printf("⚠️  Week %s: acceptance failed: %v", week, err)
			continue
		}
		stats.FeedbackAccepted++
		if config.Verbose {
			log.Printf("👍 Week %s: accepted %d assignments (total feedbacks: %d)", week, receipt.Matched, receipt.TotalFeedbacks)
		}
	}

	log.Printf(`✅ Scheduling completed:
   Weeks: %d
   Slots filled: %d
   Slots unfilled: %d
   Accepted: %d
   Rejected: %d
   Failed: %d
`, stats.WeeksAssigned, stats.SlotsFilled, stats.SlotsUnfilled, stats.FeedbackAccepted, stats.FeedbackRejected, stats.FeedbackFailed)

	return records, rejections, nil
}

// findRole returns the first assignment of the given activity type.
func findRole(meeting MeetingResponse, roleType string) *Assignment {
	for i := range meeting.Assignments {
		if meeting.Assignments[i].Type == roleType {
			return &meeting.Assignments[i]
		}
	}
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout, config.Token)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveMeetingsToFile saves the scheduled meetings to a JSON file.
func saveMeetingsToFile(ctx context.Context, config *Config, records []weekRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no meetings to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "meetings_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array, one record per line
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}
	for i, rec := range records {
		jsonData, err := marshalJSON(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal week %s: %w", rec.Week, err)
		}
		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write week %s: %w", rec.Week, err)
		}
		if i < len(records)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}
	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "meetings saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var fillRate, weeksPerSecond float64

	totalSlots := stats.SlotsFilled + stats.SlotsUnfilled
	if totalSlots > 0 {
		fillRate = float64(stats.SlotsFilled) / float64(totalSlots) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		weeksPerSecond = float64(stats.WeeksAssigned) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("weeksPlanned", stats.WeeksPlanned),
		logger.Int("weeksAssigned", stats.WeeksAssigned),
		logger.Int("slotsFilled", stats.SlotsFilled),
		logger.Int("slotsUnfilled", stats.SlotsUnfilled),
		logger.Int("feedbackAccepted", stats.FeedbackAccepted),
		logger.Int("feedbackRejected", stats.FeedbackRejected),
		logger.Int("feedbackFailed", stats.FeedbackFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("fillRate", fillRate),
		logger.Float64("weeksPerSecond", weeksPerSecond))
}
