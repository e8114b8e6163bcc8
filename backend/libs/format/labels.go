package format

// statusLabels maps a status tag to its zh-CN and en-US display label.
var statusLabels = map[string][2]string{
	"online":      {"在线", "Online"},
	"charging":    {"充电中", "Charging"},
	"maintenance": {"维护中", "Maintenance"},
	"offline":     {"离线", "Offline"},
	"fault":       {"故障", "Fault"},
	"completed":   {"已完成", "Completed"},
	"cancelled":   {"已取消", "Cancelled"},
	"refunded":    {"已退款", "Refunded"},
	"abnormal":    {"异常", "Abnormal"},
	"active":      {"正常", "Active"},
	"inactive":    {"未激活", "Inactive"},
	"blocked":     {"已禁用", "Blocked"},
	"success":     {"成功", "Success"},
	"pending":     {"处理中", "Pending"},
	"failed":      {"失败", "Failed"},
	"planned":     {"待执行", "Planned"},
	"in_progress": {"进行中", "In progress"},
	"overdue":     {"已逾期", "Overdue"},
}

// StatusLabel returns the display label of a status tag. Unknown tags are
// returned unchanged.
func StatusLabel(status, lang string) string {
	l, ok := statusLabels[status]
	if !ok {
		return status
	}
	if lang == LangEN {
		return l[1]
	}
	return l[0]
}
