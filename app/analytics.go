// Package app computes admin dashboard aggregates from raw store reads.
package app

import (
	"sort"
	"time"

	"github.com/Kolahan61/OAMA-sub000/app/models"
)

const dateLayout = "2006-01-02"

type trendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type revenuePoint struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
}

type classCount struct {
	ClassID string `json:"classId"`
	Title   string `json:"title"`
	Count   int    `json:"count"`
}

// bookingsPerDay buckets bookings by registration date, ascending by date.
func bookingsPerDay(bookings []models.Booking) []trendPoint {
	buckets := map[string]int{}
	for _, b := range bookings {
		buckets[b.RegisteredAt.UTC().Format(dateLayout)]++
	}
	return sortedTrend(buckets)
}

// revenuePerDay sums succeeded ledger amounts by day, ascending by date.
// Failed payments contribute nothing.
func revenuePerDay(payments []models.PaymentHistory) []revenuePoint {
	buckets := map[string]int64{}
	for _, p := range payments {
		if p.Status != "succeeded" {
			continue
		}
		buckets[p.CreatedAt.UTC().Format(dateLayout)] += p.Amount
	}

	out := make([]revenuePoint, 0, len(buckets))
	for date, amount := range buckets {
		out = append(out, revenuePoint{Date: date, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// totalRevenue sums succeeded ledger amounts.
func totalRevenue(payments []models.PaymentHistory) int64 {
	var total int64
	for _, p := range payments {
		if p.Status == "succeeded" {
			total += p.Amount
		}
	}
	return total
}

// classPopularity ranks classes by active-or-completed booking count,
// most popular first.
func classPopularity(bookings []models.Booking) []classCount {
	type agg struct {
		title string
		count int
	}
	buckets := map[string]*agg{}
	for _, b := range bookings {
		if b.Status == models.BookingCancelled {
			continue
		}
		if cur, ok := buckets[b.ClassID]; ok {
			cur.count++
		} else {
			buckets[b.ClassID] = &agg{title: b.ClassTitle, count: 1}
		}
	}

	out := make([]classCount, 0, len(buckets))
	for id, a := range buckets {
		out = append(out, classCount{ClassID: id, Title: a.title, Count: a.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ClassID < out[j].ClassID
	})
	return out
}

// membershipDistribution counts users per membership status.
func membershipDistribution(users []models.User) map[string]int {
	out := map[string]int{}
	for _, u := range users {
		status := u.MembershipStatus
		if status == "" {
			status = models.MembershipNone
		}
		out[string(status)]++
	}
	return out
}

// countActiveMembers counts users whose membership grants access.
func countActiveMembers(users []models.User) int {
	n := 0
	for i := range users {
		if users[i].HasActiveMembership() {
			n++
		}
	}
	return n
}

// countActiveBookings counts bookings still active.
func countActiveBookings(bookings []models.Booking) int {
	n := 0
	for _, b := range bookings {
		if b.Status == models.BookingActive {
			n++
		}
	}
	return n
}

func sortedTrend(buckets map[string]int) []trendPoint {
	out := make([]trendPoint, 0, len(buckets))
	for date, count := range buckets {
		out = append(out, trendPoint{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// windowCutoff returns the start of the trailing reporting window.
func windowCutoff(now time.Time, days int) time.Time {
	if days <= 0 {
		days = 30
	}
	return now.UTC().AddDate(0, 0, -days)
}
