// Package dataset declares the logical datasets the dashboard works with —
// utilization, P&L, SOW project tracking, and daily KPI — and runs the
// fetch, flatten, reconcile, coerce, derive pipeline that turns a remote
// table into an analyzable one.
package dataset

import (
	"github.com/wellside/insight/internal/score"
	"github.com/wellside/insight/internal/table"
)

// RateSpec describes a derived ratio metric. Pairs are synonym column pairs
// tried in priority order; the first pair with both columns present wins.
type RateSpec struct {
	Output string
	Pairs  []table.RatePair
}

// Dataset is the static description of one logical dataset: where to find
// its columns when the upstream schema drifts, and how to coerce and enrich
// them. Configuration, not runtime state.
type Dataset struct {
	Name string

	// Key identifies the dataset's base/table pair in configuration.
	Key string

	Fields         []table.FieldSpec
	DateColumns    []string
	NumericColumns []string
	FlagColumns    []string
	Rates          []RateSpec
}

// Utilization describes the appointment utilization dataset.
func Utilization() Dataset {
	return Dataset{
		Name: "utilization",
		Key:  "UTILIZATION",
		Fields: []table.FieldSpec{
			{Canonical: "CLIENT", Candidates: []string{"Client", "client", "Company", "company", "Organization"}},
			{Canonical: "SITE", Candidates: []string{"Site", "site", "Location", "location"}},
			{Canonical: "DATE_OF_SERVICE", Candidates: []string{"Date of Service", "date_of_service", "Service Date", "DOS"}},
			{Canonical: "YEAR", Candidates: []string{"Year", "year", "Calendar Year"}},
			{Canonical: "HEADCOUNT", Candidates: []string{"Headcount", "headcount", "Head Count", "Employee Count"}},
			{Canonical: "TOTAL_BOOKING_APPTS", Candidates: []string{"Total Booking Appts", "Bookings", "Appointments Booked"}},
			{Canonical: "TOTAL_COMPLETED_APPTS", Candidates: []string{"Total Completed Appts", "Completed", "Completed Appointments"}},
		},
		DateColumns: []string{"DATE_OF_SERVICE", "Date of Service"},
		NumericColumns: []string{
			"HEADCOUNT", "WALKINS", "INTERESTED_PATIENTS",
			"TOTAL_BOOKING_APPTS", "TOTAL_COMPLETED_APPTS",
			"DENTAL", "AUDIOLOGY", "VISION", "MSK",
			"SKIN_SCREENING", "BIOMETRICS_AND_LABS",
			"Headcount", "Walkins", "Interested Patients",
			"Total Booking Appts", "Total Completed Appts",
			"Dental", "Audiology", "Vision", "MSK",
			"Skin Screening", "Biometrics and Labs",
		},
		Rates: []RateSpec{
			{Output: "Booking Rate", Pairs: []table.RatePair{
				{Numerator: "TOTAL_BOOKING_APPTS", Denominator: "HEADCOUNT"},
				{Numerator: "Total Booking Appts", Denominator: "Headcount"},
			}},
			{Output: "Show Rate", Pairs: []table.RatePair{
				{Numerator: "TOTAL_COMPLETED_APPTS", Denominator: "TOTAL_BOOKING_APPTS"},
				{Numerator: "Total Completed Appts", Denominator: "Total Booking Appts"},
			}},
			{Output: "Utilization Rate", Pairs: []table.RatePair{
				{Numerator: "TOTAL_COMPLETED_APPTS", Denominator: "HEADCOUNT"},
				{Numerator: "Total Completed Appts", Denominator: "Headcount"},
			}},
		},
	}
}

// PnL describes the profit-and-loss dataset.
func PnL() Dataset {
	return Dataset{
		Name: "pnl",
		Key:  "PNL",
		Fields: []table.FieldSpec{
			{Canonical: "CLIENT", Candidates: []string{"Client", "client", "Company", "company", "Organization", "Client Name"}},
			{Canonical: "SITE_LOCATION", Candidates: []string{"Site Location", "Site_Location", "Location", "location", "Site", "Event Location"}},
			{Canonical: "SERVICE_MONTH", Candidates: []string{"Service Month", "Month", "Date", "Service_Month", "Service Date", "Event Date"}},
			{Canonical: "REVENUE_TOTAL", Candidates: []string{"Revenue Total", "Total Revenue", "Revenue", "Revenue_Total", "Gross Revenue"}},
			{Canonical: "EXPENSE_COGS_TOTAL", Candidates: []string{"Expense COGS Total", "Total Expenses", "Expenses", "Expense_COGS_Total", "COGS", "Cost of Goods Sold"}},
			{Canonical: "NET_PROFIT", Candidates: []string{"Net Profit", "Profit", "Net Income", "Net_Profit", "Margin", "Earnings"}},
		},
		DateColumns: []string{"SERVICE_MONTH", "Service_Month", "Service Month", "Month"},
		NumericColumns: []string{
			"REVENUE_WELLNESS_FUND", "REVENUE_DENTAL_CLAIM", "REVENUE_MEDICAL_CLAIM",
			"REVENUE_EVENT_TOTAL", "REVENUE_MISSED_APPOINTMENTS", "REVENUE_TOTAL",
			"REVENUE_PER_DAY_AVG", "EXPENSE_COGS_TOTAL", "EXPENSE_COGS_PER_DAY_AVG",
			"NET_PROFIT", "NET_PROFIT_PERCENT", "SERVICE_DAYS",
			"Revenue_WellnessFund", "Revenue_DentalClaim", "Revenue_MedicalClaim_InclCancelled",
			"Revenue_EventTotal", "Revenue_MissedAppointments", "Revenue_Total",
			"Revenue_PerDay_Avg", "Expense_COGS_Total", "Expense_COGS_PerDay_Avg",
			"Net_Profit", "Service_Days",
		},
		Rates: []RateSpec{
			{Output: "Profit Margin", Pairs: []table.RatePair{
				{Numerator: "NET_PROFIT", Denominator: "REVENUE_TOTAL"},
				{Numerator: "Net_Profit", Denominator: "Revenue_Total"},
			}},
		},
	}
}

// SOW describes the statement-of-work project tracking dataset.
func SOW() Dataset {
	return Dataset{
		Name: "sow",
		Key:  "SOW",
		Fields: []table.FieldSpec{
			{Canonical: "ClientCompanyName", Candidates: []string{"Client Company Name", "Client", "Company", "Client Name"}},
			{Canonical: "ProjectName", Candidates: []string{"Project Name", "Project", "Engagement"}},
			{Canonical: "SOWQuoteNumber", Candidates: []string{"SOW Quote Number", "Quote Number", "SOW #", "Quote #"}},
			{Canonical: "ScheduledPlanningStartDate", Candidates: []string{"Scheduled Planning Start Date", "Planning Start", "Start Date"}},
			{Canonical: "ScheduledEndDate", Candidates: []string{"Scheduled End Date", "End Date"}},
			{Canonical: "ActualPlanningStartDate", Candidates: []string{"Actual Planning Start Date", "Actual Start"}},
			{Canonical: "ActualEndDate", Candidates: []string{"Actual End Date", "Actual End"}},
		},
		DateColumns: []string{
			"ScheduledPlanningStartDate", "ScheduledEndDate",
			"ActualPlanningStartDate", "ActualEndDate",
		},
	}
}

// KPI describes the daily leader KPI dataset consumed by scoring.
func KPI() Dataset {
	return Dataset{
		Name: "kpi",
		Key:  "KPI",
		Fields: []table.FieldSpec{
			{Canonical: "Leader", Candidates: []string{"Select", "Leader", "Team Leader"}},
			{Canonical: "Site", Candidates: []string{"Sites (from Tags)", "Site", "Tags"}},
			{Canonical: "Date", Candidates: []string{"Date", "Event Date"}},
			{Canonical: "EargymPromotion", Candidates: []string{"# of Eargym Promotion", "Eargym Promotion", "Eargym"}},
			{Canonical: "Crossbooking", Candidates: []string{"# of crossbooking", "Crossbooking", "Crossbookings"}},
			{Canonical: "BOTDandEODFilled", Candidates: []string{"Are BOTD and EOD already filled?", "BOTD and EOD", "BOTD/EOD"}},
			{Canonical: "PhotosVideosTestimonials", Candidates: []string{"Number of photos/Videos/Testimonials posted at the Teams channel", "Photos/Videos/Testimonials", "Photos"}},
			{Canonical: "XraysAndDentalNotesUploaded", Candidates: []string{"Are all Xray's and Dental Notes uploaded to the right platforms?", "Xrays and Dental Notes", "Xrays"}},
			{Canonical: "IfNoWhy", Candidates: []string{"If No, Why?", "If No Why"}},
		},
		DateColumns:    []string{"Date"},
		NumericColumns: []string{"EargymPromotion", "Crossbooking", "PhotosVideosTestimonials"},
		FlagColumns:    []string{"BOTDandEODFilled", "XraysAndDentalNotesUploaded"},
	}
}

// KPI minimum thresholds. Business constants from the operations team,
// overridable through configuration.
const (
	MinimumEargym       = 1 // one promotion per event
	MinimumCrossbooking = 2
	MinimumPhotos       = 3
)

// KPIScoringDefaults returns the default scoring options for the KPI
// dataset: equal weights, the standard minimums, and the default
// compliance/magnitude blend.
func KPIScoringDefaults() score.Options {
	return score.Options{
		EntityColumn: "Leader",
		Weights: map[string]float64{
			"EargymPromotion":             1,
			"Crossbooking":                1,
			"BOTDandEODFilled":            1,
			"PhotosVideosTestimonials":    1,
			"XraysAndDentalNotesUploaded": 1,
		},
		Minimums: map[string]float64{
			"EargymPromotion":          MinimumEargym,
			"Crossbooking":             MinimumCrossbooking,
			"PhotosVideosTestimonials": MinimumPhotos,
		},
	}
}
