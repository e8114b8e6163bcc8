package models

// Status sets per entity.
var (
	StationStatuses     = []string{"online", "charging", "maintenance", "offline"}
	DeviceStatuses      = []string{"online", "charging", "maintenance", "offline", "fault"}
	OrderStatuses       = []string{"charging", "completed", "cancelled", "refunded", "abnormal"}
	UserStatuses        = []string{"active", "inactive", "blocked"}
	TransactionStatuses = []string{"success", "pending", "failed", "refunded"}
	MaintenanceStatuses = []string{"planned", "in_progress", "completed", "overdue", "cancelled"}
)

// Enumerations used by filters and generators.
var (
	DeviceTypes      = []string{"ac", "dc"}
	PaymentMethods   = []string{"wechat", "alipay", "card", "wallet"}
	UserLevels       = []string{"normal", "silver", "gold", "platinum"}
	TransactionTypes = []string{"charge", "recharge", "refund", "withdraw"}
	MaintenanceTypes = []string{"inspection", "repair", "upgrade", "cleaning"}
	Priorities       = []string{"low", "medium", "high", "urgent"}
)
