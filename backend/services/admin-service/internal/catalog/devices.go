package catalog

import (
	"time"

	"evadmin/backend/libs/format"
	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/models"
)

// Devices describes the charger list. now drives the heartbeat column.
func Devices(now func() time.Time) *Definition[models.Device] {
	if now == nil {
		now = time.Now
	}
	schema := listview.NewSchema[models.Device]().
		Text("id", func(d models.Device) string { return d.ID }).
		Text("station_id", func(d models.Device) string { return d.StationID }).
		Text("station_name", func(d models.Device) string { return d.StationName }).
		Text("model", func(d models.Device) string { return d.Model }).
		Text("type", func(d models.Device) string { return d.Type }).
		Text("status", func(d models.Device) string { return d.Status }).
		Text("firmware", func(d models.Device) string { return d.Firmware }).
		Number("power_kw", func(d models.Device) float64 { return d.PowerKW }).
		Number("temperature", func(d models.Device) float64 { return d.Temperature }).
		Time("last_heartbeat", func(d models.Device) time.Time { return d.LastHeartbeat }).
		Contains("q", "id", "station_name", "model").
		Equals("status", "").
		Equals("type", "").
		Equals("station_id", "")

	return &Definition[models.Device]{
		Name:   models.EntityDevices,
		Title:  "Devices",
		Schema: schema,
		Columns: []Column[models.Device]{
			textCol("id", "ID", func(d models.Device) string { return d.ID }),
			textCol("station_name", "Station", func(d models.Device) string { return d.StationName }),
			textCol("model", "Model", func(d models.Device) string { return d.Model }),
			textCol("type", "Type", func(d models.Device) string { return d.Type }),
			statusCol(func(d models.Device) string { return d.Status }),
			numberCol("power_kw", "Power", func(d models.Device) float64 { return d.PowerKW }, format.Power),
			numberCol("temperature", "Temperature", func(d models.Device) float64 { return d.Temperature }, format.Temperature),
			textCol("firmware", "Firmware", func(d models.Device) string { return d.Firmware }),
			relativeCol("last_heartbeat", "Last heartbeat", func(d models.Device) time.Time { return d.LastHeartbeat }, now),
		},
		Statuses: models.DeviceStatuses,
		Transitions: map[string][]string{
			"maintenance": nil,
			"online":      {"maintenance", "fault", "offline"},
		},
		ID:        func(d models.Device) string { return d.ID },
		Status:    func(d models.Device) string { return d.Status },
		SetStatus: func(d *models.Device, status string) { d.Status = status },
	}
}
