package models

// Summary backs the dashboard cards.
type Summary struct {
	Stations       map[string]int `json:"stations"`
	Devices        map[string]int `json:"devices"`
	Orders         map[string]int `json:"orders"`
	Maintenance    map[string]int `json:"maintenance"`
	TodayEnergyKWh float64        `json:"today_energy_kwh"`
	TodayRevenue   float64        `json:"today_revenue"`
	ActiveUsers    int            `json:"active_users"`
}
