package standingsservice

import (
	"context"
	"fmt"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ArchiveSnapshot uploads the current xlsx export of an event to object
// storage and returns its public URL.
func (s *StandingsService) ArchiveSnapshot(ctx context.Context, eventID string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}

	workbook, err := s.ExportStandingsXLSX(ctx, eventID)
	if err != nil {
		return "", err
	}

	return query(s, ctx, "ArchiveSnapshot", eventID, func(ctx context.Context) (string, error) {
		key := fmt.Sprintf("standings/%s/%s.xlsx", eventID, s.now().Format("20060102T150405Z"))
		url, err := s.archive.Upload(ctx, key, workbook, xlsxContentType)
		if err != nil {
			return "", fmt.Errorf("failed to upload snapshot: %w", err)
		}
		return url, nil
	})
}
