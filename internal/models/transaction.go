package models

import "time"

// AgeUnknown marks rows where the age column was absent or blank.
const AgeUnknown = -1

type Transaction struct {
	Date        time.Time
	Amount      float64
	Department  string
	Category    string
	Nationality string
	Age         int
	City        string
	Zone        string
	Channel     string
	Product     string
}

type MonthlySales struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type ChannelSales struct {
	Channel string  `json:"channel"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type WeekdaySales struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type ZoneSales struct {
	Zone    string  `json:"zone"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type CitySales struct {
	City    string      `json:"city"`
	Revenue float64     `json:"revenue"`
	Orders  int         `json:"orders"`
	Zones   []ZoneSales `json:"zones,omitempty"`
}

// AOVSegment is one row of an average-order-value breakdown.
// Defined is false for zero-order segments, where the mean does not exist.
type AOVSegment struct {
	Segment string  `json:"segment"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	AOV     float64 `json:"aov"`
	Defined bool    `json:"defined"`
}

type ValueSegment struct {
	Segment string  `json:"segment"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
	Share   float64 `json:"share"`
}

type ProductSales struct {
	Product string  `json:"product"`
	Revenue float64 `json:"revenue"`
	AOV     float64 `json:"aov"`
	Orders  int     `json:"orders"`
}

type DailySales struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	AOV     float64 `json:"aov"`
	Orders  int     `json:"orders"`
}

type Overview struct {
	TotalRevenue  float64 `json:"total_revenue"`
	Orders        int     `json:"orders"`
	AOV           float64 `json:"aov"`
	AOVDefined    bool    `json:"aov_defined"`
	Nationalities int     `json:"nationalities"`
	Months        int     `json:"months"`
}

// DimensionValues holds the distinct values used to populate filter widgets.
type DimensionValues struct {
	Departments   []string `json:"departments"`
	Categories    []string `json:"categories"`
	Nationalities []string `json:"nationalities"`
	Channels      []string `json:"channels"`
	Cities        []string `json:"cities"`
	AgeMin        int      `json:"age_min"`
	AgeMax        int      `json:"age_max"`
}
