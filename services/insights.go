package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"autohome-scraper/models"
	"autohome-scraper/utils"
)

const previewSize = 10

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// SalesSummary computes the figures reported after a ranking run. records
// are expected in rank order.
func (s *InsightService) SalesSummary(runID string, records []models.SalesRecord) models.SalesSummary {
	sum := models.SalesSummary{RunID: runID, Total: len(records)}
	if len(records) == 0 {
		return sum
	}

	sum.MinRank, sum.MaxRank = records[0].Rank, records[0].Rank
	for _, r := range records {
		if r.Rank < sum.MinRank {
			sum.MinRank = r.Rank
		}
		if r.Rank > sum.MaxRank {
			sum.MaxRank = r.Rank
		}
		if r.SeriesID != "" {
			sum.WithID++
		}
		sum.TotalSold += r.MonthlySales
	}

	n := min(previewSize, len(records))
	sum.Preview = append([]models.SalesRecord(nil), records[:n]...)
	return sum
}

// ReviewReport aggregates the per-vehicle results of a review run. results[i]
// belongs to cars[i]; vehicles are listed in input order and a vehicle without
// a result counts zero reviews.
func (s *InsightService) ReviewReport(runID, outputDir string, at time.Time, cars []models.CarInfo, results []models.VehicleResult) models.ReviewReport {
	report := models.ReviewReport{
		RunID:          runID,
		GeneratedAt:    at.Format(models.TimeLayout),
		OutputDir:      outputDir,
		TargetVehicles: len(cars),
		PerVehicle:     make([]models.VehicleCount, 0, len(cars)),
	}

	for _, res := range results {
		if len(res.Reviews) > 0 {
			report.VehiclesWithData++
		}
		for _, r := range res.Reviews {
			report.TotalReviews++
			report.TotalViews += r.Views
			report.TotalLikes += r.Likes
			report.TotalComments += r.Comments
			if r.PurchasePurpose != "" {
				report.WithPurpose++
			}
		}
	}

	for i, car := range cars {
		count := 0
		if i < len(results) {
			count = len(results[i].Reviews)
		}
		report.PerVehicle = append(report.PerVehicle, models.VehicleCount{Car: car, Reviews: count})
	}
	return report
}

// Render writes the plain-text review report.
func (s *InsightService) Render(w io.Writer, r models.ReviewReport) error {
	sep := strings.Repeat("=", 50)
	thin := strings.Repeat("-", 30)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n汽车之家口碑评论爬取汇总报告\n%s\n", sep, sep)
	fmt.Fprintf(&b, "爬取时间: %s\n", r.GeneratedAt)
	fmt.Fprintf(&b, "运行ID: %s\n", r.RunID)
	fmt.Fprintf(&b, "目标车型总数: %d\n", r.TargetVehicles)
	fmt.Fprintf(&b, "成功获取评论的车型数: %d\n", r.VehiclesWithData)
	fmt.Fprintf(&b, "总评论数量: %d\n", r.TotalReviews)
	fmt.Fprintf(&b, "输出目录: %s\n", r.OutputDir)
	fmt.Fprintf(&b, "总观看数: %d\n", r.TotalViews)
	fmt.Fprintf(&b, "总点赞数: %d\n", r.TotalLikes)
	fmt.Fprintf(&b, "总评论数: %d\n", r.TotalComments)
	fmt.Fprintf(&b, "包含购车目的的评论数: %d\n", r.WithPurpose)

	fmt.Fprintf(&b, "\n%s\n各车型评论统计:\n%s\n", thin, thin)
	for _, v := range r.PerVehicle {
		fmt.Fprintf(&b, "排名%3d: %s (ID: %s) - %d条评论\n", v.Car.Rank, v.Car.Name, v.Car.SeriesID, v.Reviews)
	}
	fmt.Fprintf(&b, "\n%s\n", sep)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSales writes the run summary and top-of-ranking preview.
func (s *InsightService) RenderSales(w io.Writer, sum models.SalesSummary) error {
	sep := strings.Repeat("=", 50)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n汽车之家销量排名爬取结果\n%s\n", sep, sep)
	fmt.Fprintf(&b, "运行ID: %s\n", sum.RunID)
	fmt.Fprintf(&b, "总数据量: %d\n", sum.Total)
	if sum.Total > 0 {
		fmt.Fprintf(&b, "排名范围: %d - %d\n", sum.MinRank, sum.MaxRank)
	}
	fmt.Fprintf(&b, "有车型ID的数据: %d\n", sum.WithID)
	fmt.Fprintf(&b, "月销量合计: %d\n", sum.TotalSold)

	if len(sum.Preview) > 0 {
		fmt.Fprintf(&b, "\n前%d名数据预览:\n", len(sum.Preview))
		for i, r := range sum.Preview {
			id := r.SeriesID
			if id == "" {
				id = "N/A"
			}
			fmt.Fprintf(&b, "%2d. %-15s | 销量: %6d | ID: %s\n", i+1, r.Name, r.MonthlySales, id)
		}
	}
	fmt.Fprintf(&b, "%s\n", sep)

	_, err := io.WriteString(w, b.String())
	return err
}
