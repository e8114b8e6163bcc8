package provider

import (
	"database/sql"

	"evadmin/backend/services/admin-service/internal/models"
)

func identity(cols ...string) map[string]string {
	out := make(map[string]string, len(cols))
	for _, c := range cols {
		out[c] = c
	}
	return out
}

// StationsTable maps models.Station.
var StationsTable = Table[models.Station]{
	Name: "stations",
	Columns: []string{"id", "name", "city", "address", "operator", "status", "device_count",
		"power_kw", "utilization", "today_energy_kwh", "today_revenue", "updated_at"},
	Exprs: identity("id", "name", "city", "address", "operator", "status", "device_count",
		"power_kw", "utilization", "today_energy_kwh", "today_revenue", "updated_at"),
	Scan: func(s scanner) (models.Station, error) {
		var st models.Station
		err := s.Scan(&st.ID, &st.Name, &st.City, &st.Address, &st.Operator, &st.Status, &st.DeviceCount,
			&st.PowerKW, &st.Utilization, &st.TodayEnergyKWh, &st.TodayRevenue, &st.UpdatedAt)
		return st, err
	},
}

// DevicesTable maps models.Device.
var DevicesTable = Table[models.Device]{
	Name: "devices",
	Columns: []string{"id", "station_id", "station_name", "model", "type", "status", "power_kw",
		"firmware", "temperature", "last_heartbeat"},
	Exprs: identity("id", "station_id", "station_name", "model", "type", "status", "power_kw",
		"firmware", "temperature", "last_heartbeat"),
	Scan: func(s scanner) (models.Device, error) {
		var d models.Device
		err := s.Scan(&d.ID, &d.StationID, &d.StationName, &d.Model, &d.Type, &d.Status, &d.PowerKW,
			&d.Firmware, &d.Temperature, &d.LastHeartbeat)
		return d, err
	},
}

// OrdersTable maps models.Order. end_time is NULL while charging.
var OrdersTable = Table[models.Order]{
	Name: "orders",
	Columns: []string{"id", "user_id", "user_name", "station_name", "device_id", "status",
		"energy_kwh", "amount", "payment", "start_time", "end_time"},
	Exprs: identity("id", "user_id", "user_name", "station_name", "device_id", "status",
		"energy_kwh", "amount", "payment", "start_time", "end_time"),
	Custom: map[string]func(string) string{
		"date": func(arg string) string { return "start_time::date = " + arg + "::date" },
	},
	Scan: func(s scanner) (models.Order, error) {
		var o models.Order
		var end sql.NullTime
		err := s.Scan(&o.ID, &o.UserID, &o.UserName, &o.StationName, &o.DeviceID, &o.Status,
			&o.EnergyKWh, &o.Amount, &o.Payment, &o.StartTime, &end)
		o.EndTime = end.Time
		return o, err
	},
}

// UsersTable maps models.User.
var UsersTable = Table[models.User]{
	Name: "customers",
	Columns: []string{"id", "name", "phone", "email", "level", "status", "balance",
		"order_count", "total_spent", "registered_at"},
	Exprs: identity("id", "name", "phone", "email", "level", "status", "balance",
		"order_count", "total_spent", "registered_at"),
	Scan: func(s scanner) (models.User, error) {
		var u models.User
		err := s.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.Level, &u.Status, &u.Balance,
			&u.OrderCount, &u.TotalSpent, &u.RegisteredAt)
		return u, err
	},
}

// TransactionsTable maps models.Transaction.
var TransactionsTable = Table[models.Transaction]{
	Name:    "transactions",
	Columns: []string{"id", "type", "user_name", "order_id", "status", "amount", "channel", "created_at"},
	Exprs:   identity("id", "type", "user_name", "order_id", "status", "amount", "channel", "created_at"),
	Scan: func(s scanner) (models.Transaction, error) {
		var t models.Transaction
		err := s.Scan(&t.ID, &t.Type, &t.UserName, &t.OrderID, &t.Status, &t.Amount, &t.Channel, &t.CreatedAt)
		return t, err
	},
}

// MaintenanceTable maps models.MaintenancePlan. completed_at is NULL until
// the plan is done; priority sorts by severity.
var MaintenanceTable = Table[models.MaintenancePlan]{
	Name: "maintenance_plans",
	Columns: []string{"id", "title", "station_name", "device_id", "type", "priority", "status",
		"assignee", "scheduled_at", "completed_at"},
	Exprs: func() map[string]string {
		m := identity("id", "title", "station_name", "device_id", "type", "status",
			"assignee", "scheduled_at", "completed_at")
		m["priority"] = "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'urgent' THEN 4 ELSE 0 END"
		return m
	}(),
	Custom: map[string]func(string) string{
		"priority": func(arg string) string { return "priority = " + arg },
	},
	Scan: func(s scanner) (models.MaintenancePlan, error) {
		var p models.MaintenancePlan
		var done sql.NullTime
		err := s.Scan(&p.ID, &p.Title, &p.StationName, &p.DeviceID, &p.Type, &p.Priority, &p.Status,
			&p.Assignee, &p.ScheduledAt, &done)
		p.CompletedAt = done.Time
		return p, err
	},
}
