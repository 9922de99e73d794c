package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

const exportSheet = "Applications"

var exportHeaders = []string{
	"Application ID", "Applicant", "Email", "Opportunity", "Organization",
	"Status", "Applied At", "Interview Date", "Admin Notes",
}

// Export renders the matching applications as a spreadsheet; administrators only
func (s *applicationService) Export(ctx context.Context, filters repositories.ApplicationFilters, actorID string) (*ExportResult, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrator() {
		return nil, NewPermissionError(actorID, "", "application", "export", "administrator role required")
	}

	applications, err := s.repo.Application().ListForExport(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, application := range applications {
		values := exportRow(application)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}

	s.logger.Info("applications exported", "count", len(applications), "exported_by", actorID)

	return &ExportResult{
		Filename:    fmt.Sprintf("applications_%s.xlsx", time.Now().Format("2006-01-02")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}

func exportRow(application *models.Application) []interface{} {
	interview := ""
	if application.InterviewDate != nil {
		interview = application.InterviewDate.Format(time.RFC3339)
	}
	return []interface{}{
		application.ID,
		application.User.Name,
		application.User.Email,
		application.Opportunity.Title,
		application.Opportunity.Organization,
		string(application.Status),
		application.AppliedAt.Format(time.RFC3339),
		interview,
		application.AdminNotes,
	}
}
