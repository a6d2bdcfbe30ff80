package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) monthlySummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	series, err := h.ds.VolumeOverTime(ctx, uid, year, month)
	if err != nil {
		return nil, err
	}

	muscles, err := h.ds.VolumeByMuscle(ctx, uid, year, month)
	if err != nil {
		h.log.Warn("monthly_summary: muscle breakdown failed", "error", err)
	}

	summary := map[string]any{
		"year":             year,
		"month":            month,
		"daily_volume":     series,
		"volume_by_muscle": muscles,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
