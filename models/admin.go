package models

import (
	"strconv"
	"time"
)

// AdminColumn is one column of the rides admin list.
type AdminColumn struct {
	Name  string
	Label string
	Value func(r *Ride, loc *time.Location) string
}

const adminTimeLayout = "2006-01-02 15:04"

// RideAdminColumns is the fixed column list of the rides admin page.
var RideAdminColumns = []AdminColumn{
	{
		Name:  "start_time",
		Label: "Start time",
		Value: func(r *Ride, loc *time.Location) string { return r.StartTime.In(loc).Format(adminTimeLayout) },
	},
	{
		Name:  "end_time",
		Label: "End time",
		Value: func(r *Ride, loc *time.Location) string { return r.EndTime.In(loc).Format(adminTimeLayout) },
	},
	{
		Name:  "minutes",
		Label: "Minutes",
		Value: func(r *Ride, _ *time.Location) string { return strconv.Itoa(r.Minutes()) },
	},
	{
		Name:  "distance",
		Label: "Distance",
		Value: func(r *Ride, _ *time.Location) string { return r.DistanceString() },
	},
	{
		Name:  "user",
		Label: "User",
		Value: func(r *Ride, _ *time.Location) string { return r.Username },
	},
}
