package catalog

import (
	"time"

	"evadmin/backend/libs/format"
	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/models"
)

// Orders describes the charging-order list. The date filter takes
// YYYY-MM-DD and matches on the order start day.
func Orders() *Definition[models.Order] {
	schema := listview.NewSchema[models.Order]().
		Text("id", func(o models.Order) string { return o.ID }).
		Text("user_name", func(o models.Order) string { return o.UserName }).
		Text("station_name", func(o models.Order) string { return o.StationName }).
		Text("device_id", func(o models.Order) string { return o.DeviceID }).
		Text("status", func(o models.Order) string { return o.Status }).
		Text("payment", func(o models.Order) string { return o.Payment }).
		Number("energy_kwh", func(o models.Order) float64 { return o.EnergyKWh }).
		Number("amount", func(o models.Order) float64 { return o.Amount }).
		Time("start_time", func(o models.Order) time.Time { return o.StartTime }).
		Time("end_time", func(o models.Order) time.Time { return o.EndTime }).
		Contains("q", "id", "user_name", "station_name").
		Equals("status", "").
		Equals("payment", "").
		Match("date", func(o models.Order, v string) bool {
			return o.StartTime.Format(time.DateOnly) == v
		})

	return &Definition[models.Order]{
		Name:   models.EntityOrders,
		Title:  "Orders",
		Schema: schema,
		Columns: []Column[models.Order]{
			textCol("id", "Order", func(o models.Order) string { return o.ID }),
			textCol("user_name", "User", func(o models.Order) string { return o.UserName }),
			textCol("station_name", "Station", func(o models.Order) string { return o.StationName }),
			textCol("device_id", "Device", func(o models.Order) string { return o.DeviceID }),
			statusCol(func(o models.Order) string { return o.Status }),
			numberCol("energy_kwh", "Energy", func(o models.Order) float64 { return o.EnergyKWh }, format.Energy),
			numberCol("amount", "Amount", func(o models.Order) float64 { return o.Amount }, format.Currency),
			textCol("payment", "Payment", func(o models.Order) string { return o.Payment }),
			timeCol("start_time", "Started", func(o models.Order) time.Time { return o.StartTime }),
			timeCol("end_time", "Ended", func(o models.Order) time.Time { return o.EndTime }),
		},
		Statuses: models.OrderStatuses,
		Transitions: map[string][]string{
			"refunded":  {"completed"},
			"cancelled": {"charging", "abnormal"},
		},
		ID:        func(o models.Order) string { return o.ID },
		Status:    func(o models.Order) string { return o.Status },
		SetStatus: func(o *models.Order, status string) { o.Status = status },
	}
}
