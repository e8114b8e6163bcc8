package catalog

import (
	"time"

	"evadmin/backend/libs/format"
	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/models"
)

// Stations describes the charging-station list.
func Stations() *Definition[models.Station] {
	schema := listview.NewSchema[models.Station]().
		Text("id", func(s models.Station) string { return s.ID }).
		Text("name", func(s models.Station) string { return s.Name }).
		Text("city", func(s models.Station) string { return s.City }).
		Text("address", func(s models.Station) string { return s.Address }).
		Text("operator", func(s models.Station) string { return s.Operator }).
		Text("status", func(s models.Station) string { return s.Status }).
		Number("device_count", func(s models.Station) float64 { return float64(s.DeviceCount) }).
		Number("power_kw", func(s models.Station) float64 { return s.PowerKW }).
		Number("utilization", func(s models.Station) float64 { return s.Utilization }).
		Number("today_energy_kwh", func(s models.Station) float64 { return s.TodayEnergyKWh }).
		Number("today_revenue", func(s models.Station) float64 { return s.TodayRevenue }).
		Time("updated_at", func(s models.Station) time.Time { return s.UpdatedAt }).
		Contains("q", "id", "name", "address").
		Equals("status", "").
		Equals("city", "").
		Equals("operator", "")

	return &Definition[models.Station]{
		Name:   models.EntityStations,
		Title:  "Stations",
		Schema: schema,
		Columns: []Column[models.Station]{
			textCol("id", "ID", func(s models.Station) string { return s.ID }),
			textCol("name", "Name", func(s models.Station) string { return s.Name }),
			textCol("city", "City", func(s models.Station) string { return s.City }),
			textCol("operator", "Operator", func(s models.Station) string { return s.Operator }),
			statusCol(func(s models.Station) string { return s.Status }),
			intCol("device_count", "Devices", func(s models.Station) int { return s.DeviceCount }),
			numberCol("power_kw", "Power", func(s models.Station) float64 { return s.PowerKW }, format.Power),
			numberCol("utilization", "Utilization", func(s models.Station) float64 { return s.Utilization }, format.Percent),
			numberCol("today_energy_kwh", "Energy today", func(s models.Station) float64 { return s.TodayEnergyKWh }, format.Energy),
			numberCol("today_revenue", "Revenue today", func(s models.Station) float64 { return s.TodayRevenue }, format.Currency),
		},
		Statuses: models.StationStatuses,
		Transitions: map[string][]string{
			"maintenance": nil,
			"online":      {"maintenance"},
			"offline":     nil,
		},
		ID:        func(s models.Station) string { return s.ID },
		Status:    func(s models.Station) string { return s.Status },
		SetStatus: func(s *models.Station, status string) { s.Status = status },
	}
}
