// internal/service/report/report_service.go
package report

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"sparkhub-service/internal/domain/audit"
	"sparkhub-service/internal/domain/playsession"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ReportService struct {
	sessionRepo playsession.Repository
	auditRepo   audit.Repository
	logger      *zap.Logger
}

func NewReportService(sessionRepo playsession.Repository, auditRepo audit.Repository, logger *zap.Logger) *ReportService {
	return &ReportService{
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// BuildActivityReport renders the activity/financial log for [from, to) as a
// two-sheet xlsx workbook: the raw audit trail and a per-day revenue summary.
func (s *ReportService) BuildActivityReport(ctx context.Context, from, to time.Time) ([]byte, string, error) {
	events, err := s.auditRepo.List(ctx, &audit.ListFilters{From: from, To: to, Limit: 500})
	if err != nil {
		return nil, "", fmt.Errorf("failed to load audit events: %w", err)
	}

	sessions, err := s.sessionRepo.ListClosedBetween(ctx, from, to)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load closed sessions: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Activity"); err != nil {
		return nil, "", err
	}

	header := []interface{}{"timestamp", "action", "description", "actor"}
	if err := f.SetSheetRow("Activity", "A1", &header); err != nil {
		return nil, "", err
	}

	row := 2
	for _, e := range events {
		line := []interface{}{
			e.CreatedAt.Format("2006-01-02 15:04"),
			string(e.ActionType),
			e.Description,
			e.Actor,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow("Activity", cell, &line); err != nil {
			return nil, "", err
		}
		row++
	}

	if err := s.writeSummarySheet(f, sessions); err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	name := fmt.Sprintf("activity_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))

	s.logger.Info("activity report built",
		zap.Int("events", len(events)),
		zap.Int("sessions", len(sessions)),
	)

	return buf.Bytes(), name, nil
}

type dayTotals struct {
	sessions int
	revenue  float64
}

func (s *ReportService) writeSummarySheet(f *excelize.File, sessions []playsession.Session) error {
	if _, err := f.NewSheet("Summary"); err != nil {
		return err
	}

	header := []interface{}{"date", "sessions_closed", "revenue"}
	if err := f.SetSheetRow("Summary", "A1", &header); err != nil {
		return err
	}

	byDay := map[string]*dayTotals{}
	for _, sess := range sessions {
		day := sess.EndedAt.Time.Format("2006-01-02")
		t, ok := byDay[day]
		if !ok {
			t = &dayTotals{}
			byDay[day] = t
		}
		t.sessions++
		if sess.AmountCharged.Valid {
			t.revenue += sess.AmountCharged.Float64
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	row := 2
	for _, day := range days {
		t := byDay[day]
		line := []interface{}{day, t.sessions, t.revenue}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Summary", cell, &line); err != nil {
			return err
		}
		row++
	}

	return nil
}
