package mockdata

import (
	"math/rand/v2"
	"time"

	"evadmin/backend/services/admin-service/internal/models"
)

// Mutator changes one record in place the way a telemetry tick would.
type Mutator[R any] func(r *R, rng *rand.Rand, now time.Time)

// MutateStation drifts utilisation and today's totals and occasionally
// changes the station status.
func MutateStation(s *models.Station, rng *rand.Rand, now time.Time) {
	if rng.IntN(4) == 0 {
		s.Status = weighted(rng, models.StationStatuses, []int{50, 35, 8, 7})
	}
	s.Utilization = clamp(round(s.Utilization+(rng.Float64()-0.5)*0.1, 3), 0, 1)
	if s.Status == "charging" || s.Status == "online" {
		energy := round(rng.Float64()*float64(s.DeviceCount)*0.8, 1)
		s.TodayEnergyKWh = round(s.TodayEnergyKWh+energy, 1)
		s.TodayRevenue = round(s.TodayRevenue+energy*1.5, 2)
	}
	s.UpdatedAt = now
}

// MutateDevice refreshes the heartbeat and temperature; faults are rare.
func MutateDevice(d *models.Device, rng *rand.Rand, now time.Time) {
	if rng.IntN(3) == 0 {
		d.Status = weighted(rng, models.DeviceStatuses, []int{45, 40, 5, 6, 4})
	}
	d.Temperature = clamp(round(d.Temperature+(rng.Float64()-0.5)*4, 1), -10, 90)
	if d.Status != "offline" {
		d.LastHeartbeat = now
	}
}

// MutateOrder advances charging orders; finished orders are left alone
// apart from the occasional refund.
func MutateOrder(o *models.Order, rng *rand.Rand, now time.Time) {
	switch o.Status {
	case "charging":
		added := round(rng.Float64()*3, 2)
		o.EnergyKWh = round(o.EnergyKWh+added, 2)
		o.Amount = round(o.Amount+added*1.5, 2)
		switch n := rng.IntN(10); {
		case n < 3:
			o.Status, o.EndTime = "completed", now
		case n == 3:
			o.Status, o.EndTime = "abnormal", now
		}
	case "completed":
		if rng.IntN(20) == 0 {
			o.Status = "refunded"
		}
	}
}

// MutateUser moves balances; status changes are uncommon.
func MutateUser(u *models.User, rng *rand.Rand, _ time.Time) {
	u.Balance = max(0, round(u.Balance+(rng.Float64()-0.6)*40, 2))
	if rng.IntN(15) == 0 {
		u.Status = weighted(rng, models.UserStatuses, []int{85, 10, 5})
	}
}

// MutateTransaction settles pending entries.
func MutateTransaction(tx *models.Transaction, rng *rand.Rand, _ time.Time) {
	switch tx.Status {
	case "pending":
		if rng.IntN(5) == 0 {
			tx.Status = "failed"
		} else {
			tx.Status = "success"
		}
	case "success":
		if tx.Type == "charge" && rng.IntN(25) == 0 {
			tx.Status = "refunded"
		}
	}
}

// MutateMaintenance progresses plans and marks late ones overdue.
func MutateMaintenance(p *models.MaintenancePlan, rng *rand.Rand, now time.Time) {
	switch p.Status {
	case "planned":
		switch {
		case now.After(p.ScheduledAt) && rng.IntN(2) == 0:
			p.Status = "overdue"
		case rng.IntN(3) == 0:
			p.Status = "in_progress"
		}
	case "overdue":
		if rng.IntN(3) == 0 {
			p.Status = "in_progress"
		}
	case "in_progress":
		if rng.IntN(2) == 0 {
			p.Status, p.CompletedAt = "completed", now
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
