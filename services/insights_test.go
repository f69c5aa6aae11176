package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autohome-scraper/models"
)

func sampleSales(n int) []models.SalesRecord {
	out := make([]models.SalesRecord, 0, n)
	for i := 1; i <= n; i++ {
		r := models.SalesRecord{Rank: i, Name: "车型", MonthlySales: 100 * i}
		if i%2 == 1 {
			r.SeriesID = "id"
		}
		out = append(out, r)
	}
	return out
}

func TestSalesSummary(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	sum := svc.SalesSummary("run-1", sampleSales(12))

	assert.Equal(t, "run-1", sum.RunID)
	assert.Equal(t, 12, sum.Total)
	assert.Equal(t, 1, sum.MinRank)
	assert.Equal(t, 12, sum.MaxRank)
	assert.Equal(t, 6, sum.WithID)
	assert.Equal(t, 7800, sum.TotalSold)
	assert.Len(t, sum.Preview, 10)
}

func TestSalesSummaryEmpty(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	sum := svc.SalesSummary("run-1", nil)

	assert.Zero(t, sum.Total)
	assert.Empty(t, sum.Preview)

	var buf bytes.Buffer
	require.NoError(t, svc.RenderSales(&buf, sum))
	assert.NotContains(t, buf.String(), "排名范围")
}

func TestRenderSales(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	records := sampleSales(2)
	records[1].SeriesID = ""

	var buf bytes.Buffer
	require.NoError(t, svc.RenderSales(&buf, svc.SalesSummary("run-1", records)))

	out := buf.String()
	assert.Contains(t, out, "总数据量: 2")
	assert.Contains(t, out, "排名范围: 1 - 2")
	assert.Contains(t, out, "ID: id")
	assert.Contains(t, out, "ID: N/A")
}

func reviewsWith(views, likes, comments int, purposes ...string) []*models.ReviewRecord {
	var out []*models.ReviewRecord
	for _, p := range purposes {
		r := models.NewReviewRecord("link")
		r.Views, r.Likes, r.Comments, r.PurchasePurpose = views, likes, comments, p
		out = append(out, r)
	}
	return out
}

func TestReviewReport(t *testing.T) {
	cars := []models.CarInfo{
		{SeriesID: "1", Rank: 1, Name: "A"},
		{SeriesID: "2", Rank: 2, Name: "B"},
		{SeriesID: "3", Rank: 3, Name: "C"},
	}
	results := []models.VehicleResult{
		{Car: cars[0], Reviews: reviewsWith(10, 2, 1, "上下班", "")},
		{Car: cars[1], Outcome: models.OutcomeNoData},
	}

	svc := NewInsightService(newTestLogger())
	at := time.Date(2025, 8, 18, 12, 0, 0, 0, time.Local)
	r := svc.ReviewReport("run-1", "out", at, cars, results)

	assert.Equal(t, 3, r.TargetVehicles)
	assert.Equal(t, 1, r.VehiclesWithData)
	assert.Equal(t, 2, r.TotalReviews)
	assert.Equal(t, 20, r.TotalViews)
	assert.Equal(t, 4, r.TotalLikes)
	assert.Equal(t, 2, r.TotalComments)
	assert.Equal(t, 1, r.WithPurpose)
	assert.Equal(t, "2025-08-18 12:00:00", r.GeneratedAt)
	assert.Equal(t, []models.VehicleCount{
		{Car: cars[0], Reviews: 2},
		{Car: cars[1], Reviews: 0},
		{Car: cars[2], Reviews: 0},
	}, r.PerVehicle)
}

func TestReviewReportDuplicateInputRows(t *testing.T) {
	car := models.CarInfo{SeriesID: "5769", Rank: 1, Name: "Model Y"}
	cars := []models.CarInfo{car, car}
	results := []models.VehicleResult{
		{Car: car, Reviews: reviewsWith(1, 0, 0, "", "", "")},
		{Car: car, Reviews: reviewsWith(1, 0, 0, "")},
	}

	svc := NewInsightService(newTestLogger())
	r := svc.ReviewReport("run-1", "out", time.Now(), cars, results)

	assert.Equal(t, 4, r.TotalReviews)
	assert.Equal(t, []models.VehicleCount{
		{Car: car, Reviews: 3},
		{Car: car, Reviews: 1},
	}, r.PerVehicle)
}

func TestRenderReviewReport(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := models.ReviewReport{
		RunID:          "run-1",
		GeneratedAt:    "2025-08-18 12:00:00",
		OutputDir:      "autohome_reviews_output",
		TargetVehicles: 1,
		TotalReviews:   2,
		PerVehicle:     []models.VehicleCount{{Car: models.CarInfo{SeriesID: "5769", Rank: 7, Name: "Model Y"}, Reviews: 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.Render(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "汽车之家口碑评论爬取汇总报告")
	assert.Contains(t, out, "目标车型总数: 1\n")
	assert.Contains(t, out, "总评论数量: 2\n")
	assert.Contains(t, out, "输出目录: autohome_reviews_output\n")
	assert.Contains(t, out, "排名  7: Model Y (ID: 5769) - 2条评论\n")
}
