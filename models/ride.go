package models

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Ride struct {
	ID        string          `db:"id"         json:"id"`
	UserID    string          `db:"user_id"    json:"user_id"`
	Distance  decimal.Decimal `db:"distance"   json:"distance"`
	StartTime time.Time       `db:"start_time" json:"start_time"`
	EndTime   time.Time       `db:"end_time"   json:"end_time"`

	// Username of the owner, filled in by queries joining users
	Username string `db:"username" json:"username"`
}

// Duration is EndTime minus StartTime and is negative when the ride ends before it starts.
func (r *Ride) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Minutes is the ride duration rounded to whole minutes, halves to even.
func (r *Ride) Minutes() int {
	return int(math.RoundToEven(r.Duration().Minutes()))
}

// DistanceString renders the distance with exactly two decimal places.
func (r *Ride) DistanceString() string {
	return r.Distance.StringFixed(2)
}

// Description renders a ride as "45m, 5.50 miles by alice".
func (r *Ride) Description() string {
	return fmt.Sprintf("%dm, %s miles by %s", r.Minutes(), r.DistanceString(), r.Username)
}

func (r *Ride) String() string {
	return r.Description()
}

// RideInput carries the user-submitted fields of a new ride.
type RideInput struct {
	Distance  decimal.Decimal
	StartTime time.Time
	EndTime   time.Time
}

// RidesPage is one page of the admin rides list.
type RidesPage struct {
	Rides      []*Ride
	Page       int
	PageSize   int
	TotalCount int
}

func (p *RidesPage) HasPrevious() bool {
	return p.Page > 1
}

func (p *RidesPage) HasNext() bool {
	if p.PageSize <= 0 {
		return false
	}
	return p.Page < (p.TotalCount+p.PageSize-1)/p.PageSize
}
