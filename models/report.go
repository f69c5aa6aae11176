package models

import "github.com/google/uuid"

// NewRunID returns an identifier shared by every output of one run.
func NewRunID() string {
	return uuid.NewString()
}

// VehicleOutcome classifies how the review workflow ended for one vehicle.
type VehicleOutcome int

const (
	OutcomeSuccess VehicleOutcome = iota
	OutcomeNoData
	OutcomeError
)

// Label is the word written to the progress log.
func (o VehicleOutcome) Label() string {
	switch o {
	case OutcomeSuccess:
		return "完成"
	case OutcomeNoData:
		return "失败"
	default:
		return "错误"
	}
}

func (o VehicleOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoData:
		return "no-data"
	default:
		return "error"
	}
}

// VehicleResult is what the review workflow collected for one vehicle.
type VehicleResult struct {
	Car     CarInfo
	Reviews []*ReviewRecord
	Outcome VehicleOutcome
	Err     error
	File    string
}

// SalesSummary holds the figures logged after a sales ranking run.
type SalesSummary struct {
	RunID     string
	Total     int
	MinRank   int
	MaxRank   int
	WithID    int
	Preview   []SalesRecord
	TotalSold int
}

// VehicleCount is a per-vehicle line of the review report.
type VehicleCount struct {
	Car     CarInfo
	Reviews int
}

// ReviewReport holds the aggregate figures of a review workflow run.
type ReviewReport struct {
	RunID            string
	GeneratedAt      string
	OutputDir        string
	TargetVehicles   int
	VehiclesWithData int
	TotalReviews     int
	TotalViews       int
	TotalLikes       int
	TotalComments    int
	WithPurpose      int
	PerVehicle       []VehicleCount
}
