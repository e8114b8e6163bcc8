package catalog

import (
	"time"

	"evadmin/backend/libs/format"
	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/models"
)

// Transactions describes the finance ledger.
func Transactions() *Definition[models.Transaction] {
	schema := listview.NewSchema[models.Transaction]().
		Text("id", func(t models.Transaction) string { return t.ID }).
		Text("type", func(t models.Transaction) string { return t.Type }).
		Text("user_name", func(t models.Transaction) string { return t.UserName }).
		Text("order_id", func(t models.Transaction) string { return t.OrderID }).
		Text("status", func(t models.Transaction) string { return t.Status }).
		Text("channel", func(t models.Transaction) string { return t.Channel }).
		Number("amount", func(t models.Transaction) float64 { return t.Amount }).
		Time("created_at", func(t models.Transaction) time.Time { return t.CreatedAt }).
		Contains("q", "id", "user_name", "order_id").
		Equals("status", "").
		Equals("type", "").
		Equals("channel", "")

	return &Definition[models.Transaction]{
		Name:   models.EntityTransactions,
		Title:  "Transactions",
		Schema: schema,
		Columns: []Column[models.Transaction]{
			textCol("id", "ID", func(t models.Transaction) string { return t.ID }),
			textCol("type", "Type", func(t models.Transaction) string { return t.Type }),
			textCol("user_name", "User", func(t models.Transaction) string { return t.UserName }),
			textCol("order_id", "Order", func(t models.Transaction) string { return t.OrderID }),
			statusCol(func(t models.Transaction) string { return t.Status }),
			numberCol("amount", "Amount", func(t models.Transaction) float64 { return t.Amount }, format.Currency),
			textCol("channel", "Channel", func(t models.Transaction) string { return t.Channel }),
			timeCol("created_at", "Created", func(t models.Transaction) time.Time { return t.CreatedAt }),
		},
		Statuses: models.TransactionStatuses,
		Transitions: map[string][]string{
			"success":  {"pending"},
			"failed":   {"pending"},
			"refunded": {"success"},
		},
		ID:        func(t models.Transaction) string { return t.ID },
		Status:    func(t models.Transaction) string { return t.Status },
		SetStatus: func(t *models.Transaction, status string) { t.Status = status },
	}
}
