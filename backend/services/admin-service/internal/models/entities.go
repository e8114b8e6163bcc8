package models

import "time"

// Entity names as they appear in routes and update messages.
const (
	EntityStations     = "stations"
	EntityDevices      = "devices"
	EntityOrders       = "orders"
	EntityUsers        = "users"
	EntityTransactions = "transactions"
	EntityMaintenance  = "maintenance"
)

// Entities lists every entity in menu order.
var Entities = []string{
	EntityStations,
	EntityDevices,
	EntityOrders,
	EntityUsers,
	EntityTransactions,
	EntityMaintenance,
}

// Station is a charging site.
type Station struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	City           string    `json:"city"`
	Address        string    `json:"address"`
	Operator       string    `json:"operator"`
	Status         string    `json:"status"`
	DeviceCount    int       `json:"device_count"`
	PowerKW        float64   `json:"power_kw"`
	Utilization    float64   `json:"utilization"`
	TodayEnergyKWh float64   `json:"today_energy_kwh"`
	TodayRevenue   float64   `json:"today_revenue"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Device is a single charger installed at a station.
type Device struct {
	ID            string    `json:"id"`
	StationID     string    `json:"station_id"`
	StationName   string    `json:"station_name"`
	Model         string    `json:"model"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	PowerKW       float64   `json:"power_kw"`
	Firmware      string    `json:"firmware"`
	Temperature   float64   `json:"temperature"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Order is one charging order.
type Order struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	StationName string    `json:"station_name"`
	DeviceID    string    `json:"device_id"`
	Status      string    `json:"status"`
	EnergyKWh   float64   `json:"energy_kwh"`
	Amount      float64   `json:"amount"`
	Payment     string    `json:"payment"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// User is an end customer of the charging network.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Level        string    `json:"level"`
	Status       string    `json:"status"`
	Balance      float64   `json:"balance"`
	OrderCount   int       `json:"order_count"`
	TotalSpent   float64   `json:"total_spent"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Transaction is a finance ledger entry.
type Transaction struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserName  string    `json:"user_name"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
}

// MaintenancePlan is a scheduled or ad-hoc maintenance job.
type MaintenancePlan struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StationName string    `json:"station_name"`
	DeviceID    string    `json:"device_id"`
	Type        string    `json:"type"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Assignee    string    `json:"assignee"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CompletedAt time.Time `json:"completed_at"`
}
