package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// monthArgs reads optional year/month tool arguments. Zero means the current
// year/month; the storage layer resolves the default.
func monthArgs(req mcp.CallToolRequest) (year, month int, err error) {
	year = req.GetInt("year", 0)
	month = req.GetInt("month", 0)
	if year < 0 {
		return 0, 0, fmt.Errorf("year must be positive")
	}
	if month < 0 || month > 12 {
		return 0, 0, fmt.Errorf("month must be between 1 and 12")
	}
	return year, month, nil
}

// --- Tool definitions ---

var toolGetVolumeOverTime = mcp.NewTool("get_volume_over_time",
	mcp.WithDescription("Daily total training volume (sets x reps x weight) for one calendar month, ascending by date. Days without logged workouts are omitted."),
	mcp.WithNumber("year", mcp.Description("Calendar year (e.g. 2026). Defaults to the current year.")),
	mcp.WithNumber("month", mcp.Description("Month number 1-12. Defaults to the current month.")),
)

var toolGetVolumeByMuscle = mcp.NewTool("get_volume_by_muscle",
	mcp.WithDescription("Total training volume per target muscle area for one calendar month. Useful for spotting neglected muscle groups."),
	mcp.WithNumber("year", mcp.Description("Calendar year. Defaults to the current year.")),
	mcp.WithNumber("month", mcp.Description("Month number 1-12. Defaults to the current month.")),
)

var toolListWorkoutSets = mcp.NewTool("list_workout_sets",
	mcp.WithDescription("List the user's workout sets (program days) with their exercises and planned sets."),
)

var toolGetWorkoutSet = mcp.NewTool("get_workout_set",
	mcp.WithDescription("Fetch one workout set by id, including exercises and their planned set instances (weight, reps, sets)."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Workout set id")),
)

var toolGetRecentLogs = mcp.NewTool("get_recent_logs",
	mcp.WithDescription("Most recent workout log rows, newest first. Each row is one weight bucket of one exercise from a finished workout: weight, sets, total reps, computed volume, target area, and date."),
	mcp.WithNumber("limit", mcp.Description("Maximum rows to return. Defaults to 50, capped at 500.")),
)

// --- Tool handlers ---

func (h *handlers) getVolumeOverTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, month, err := monthArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	series, err := h.ds.VolumeOverTime(ctx, uid, year, month)
	if err != nil {
		h.log.Error("mcp get_volume_over_time", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(series)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeByMuscle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year, month, err := monthArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	rows, err := h.ds.VolumeByMuscle(ctx, uid, year, month)
	if err != nil {
		h.log.Error("mcp get_volume_by_muscle", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkoutSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	sets, err := h.ds.ListWorkoutSets(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_workout_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	set, err := h.ds.GetWorkoutSet(ctx, int64(id), uid)
	if err != nil {
		h.log.Error("mcp get_workout_set", "error", err, "id", id)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(set)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 50)
	if limit < 1 || limit > 500 {
		return mcp.NewToolResultError("limit must be between 1 and 500"), nil
	}

	uid := UserIDFromContext(ctx)
	logs, err := h.ds.RecentWorkoutLogs(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_recent_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
