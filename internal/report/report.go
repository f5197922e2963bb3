// Package report runs the full analytic query suite and renders it as a
// plain-text report.
package report

import (
	"fmt"
	"io"

	"geolife-pipeline/internal/query"
)

// Defaults for the parameterized queries.
const (
	topUserCount = 20
	searchedMode = "taxi"

	// Forbidden City, Beijing
	regionLat       = 39.916
	regionLon       = 116.397
	regionHalfWidth = 0.005
)

// Params carries the parameters of the distance query
type Params struct {
	DistanceUser string
	DistanceMode string
	DistanceYear int
}

// Run executes every query in order and writes the rendered report to w.
// It stops at the first failing query.
func Run(engine *query.Engine, params Params, w io.Writer) error {
	counts, err := engine.CountEntries()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "=== Entry counts ===")
	fmt.Fprintf(w, "Users:       %d\n", counts.Users)
	fmt.Fprintf(w, "Activities:  %d\n", counts.Activities)
	fmt.Fprintf(w, "Trackpoints: %d\n", counts.Trackpoints)

	avg, ok, err := engine.AverageActivitiesPerUser()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\n=== Average activities per user ===")
	if ok {
		fmt.Fprintf(w, "%.2f\n", avg)
	} else {
		fmt.Fprintln(w, "No activities stored")
	}

	topUsers, err := engine.TopUsersByActivityCount(topUserCount)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n=== Top %d users by activity count ===\n", topUserCount)
	for i, uc := range topUsers {
		fmt.Fprintf(w, "%2d. user %s: %d activities\n", i+1, uc.UserID, uc.Count)
	}

	modeUsers, err := engine.UsersWithMode(searchedMode)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n=== Users who have taken a %s ===\n", searchedMode)
	fmt.Fprintf(w, "%d users: %v\n", len(modeUsers), modeUsers)

	histogram, err := engine.ModeHistogram()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\n=== Activities per transportation mode ===")
	for _, mc := range histogram {
		fmt.Fprintf(w, "%-12s %d\n", mc.Mode, mc.Count)
	}

	yearActs, ok, err := engine.YearWithMostActivities()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\n=== Year with most activities ===")
	if ok {
		fmt.Fprintf(w, "%d (%d activities)\n", yearActs.Year, yearActs.Count)
	} else {
		fmt.Fprintln(w, "No activities stored")
	}

	yearHours, ok, err := engine.YearWithMostHours()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\n=== Year with most recorded hours ===")
	if ok {
		fmt.Fprintf(w, "%d (%.1f hours)\n", yearHours.Year, yearHours.Hours)
		if yearActs.Year == yearHours.Year {
			fmt.Fprintln(w, "Same year leads both rankings")
		} else {
			fmt.Fprintln(w, "Different year than the activity-count leader")
		}
	} else {
		fmt.Fprintln(w, "No activities stored")
	}

	distance, err := engine.TotalDistanceForUserModeYear(
		params.DistanceUser, params.DistanceMode, params.DistanceYear)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n=== Distance by user %s (%s, %d) ===\n",
		params.DistanceUser, params.DistanceMode, params.DistanceYear)
	fmt.Fprintf(w, "Total: %.2f km over %d activities", distance.TotalKm, distance.Activities)
	if distance.TooFewData > 0 {
		fmt.Fprintf(w, " (%d with too few trackpoints)", distance.TooFewData)
	}
	fmt.Fprintln(w)

	gains, err := engine.TopAltitudeGainByUser(topUserCount)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n=== Top %d users by altitude gain ===\n", topUserCount)
	for i, ug := range gains {
		fmt.Fprintf(w, "%2d. user %s: %.0f m\n", i+1, ug.UserID, ug.Gain)
	}

	audit, err := engine.InvalidActivityAudit()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\n=== Labeled users with invalid activities ===")
	for _, uc := range audit {
		fmt.Fprintf(w, "user %s: %d invalid\n", uc.UserID, uc.Invalid)
	}
	if len(audit) == 0 {
		fmt.Fprintln(w, "None")
	}

	regionUsers, err := engine.UsersInRegion(regionLat, regionLon, regionHalfWidth)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n=== Users with trackpoints near (%.3f, %.3f) ===\n", regionLat, regionLon)
	fmt.Fprintf(w, "%d users: %v\n", len(regionUsers), regionUsers)

	userModes, err := engine.MostUsedModePerUser()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\n=== Most used transportation mode per user ===")
	for _, um := range userModes {
		fmt.Fprintf(w, "user %s: %s\n", um.UserID, um.Mode)
	}

	return nil
}
