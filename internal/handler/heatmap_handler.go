package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/service"
)

const dateFormat = "2006-01-02"

type heatmapRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type heatmapSummary struct {
	TotalSessions int `json:"totalSessions"`
	TotalMinutes  int `json:"totalMinutes"`
	ActiveDays    int `json:"activeDays"`
}

type studyHeatmapPayload struct {
	Range       heatmapRange         `json:"range"`
	Days        []service.HeatmapDay `json:"days"`
	Summary     heatmapSummary       `json:"summary"`
	GeneratedAt string               `json:"generatedAt"`
}

// GetStudyHeatmap 返回学习热力图，view 支持 week/month/year，默认 year
func (a *API) GetStudyHeatmap(c *gin.Context) {
	now := a.clock()
	start, end := resolveRange(c.Query("start"), c.Query("view"), now)

	days, err := a.sessions.Heatmap(currentActor(c), start, end)
	if err != nil {
		respondServiceError(c, err, "获取热力图数据失败")
		return
	}

	c.JSON(http.StatusOK, buildStudyHeatmapPayload(days, start, end, now))
}

func buildStudyHeatmapPayload(days []service.HeatmapDay, start, end, generatedAt time.Time) studyHeatmapPayload {
	summary := heatmapSummary{ActiveDays: len(days)}
	seconds := 0
	for _, day := range days {
		summary.TotalSessions += day.Sessions
		seconds += day.Seconds
	}
	summary.TotalMinutes = seconds / 60

	payload := studyHeatmapPayload{
		Range: heatmapRange{
			Start: start.Format(dateFormat),
			End:   end.Format(dateFormat),
		},
		Days:    days,
		Summary: summary,
	}
	if !generatedAt.IsZero() {
		payload.GeneratedAt = generatedAt.Format(time.RFC3339)
	}
	return payload
}

// resolveRange 计算热力图区间；year 视图以 start（默认今天）为终点回溯一年
func resolveRange(startStr, view string, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	start := today
	if startStr != "" {
		if parsed, err := time.ParseInLocation(dateFormat, startStr, loc); err == nil {
			start = parsed
		}
	}

	switch strings.ToLower(view) {
	case "week":
		weekday := int(start.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = start.AddDate(0, 0, -weekday+1)
		return start, start.AddDate(0, 0, 6)
	case "month":
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, -1)
	default:
		return start.AddDate(0, 0, -364), start
	}
}
