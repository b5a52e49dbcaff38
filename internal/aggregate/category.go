package aggregate

// CategoryGroup: суммы по одной категории среди ассоциированных членов.
// Nil означает, что СУБД вернула NULL вместо суммы.
type CategoryGroup struct {
	Category      string `json:"category"`
	TotalQuantity *int64 `json:"total_quantity"`
	TotalExport   *int64 `json:"total_export"`
}

// CategoryReport: суммы по категориям и общие итоги.
type CategoryReport struct {
	Categories  []CategoryGroup `json:"categories"`
	GrandTotal  int64           `json:"grand_total"`
	GrandExport int64           `json:"grand_export"`
}

// BuildCategoryReport считает общие итоги, принимая NULL-суммы за ноль.
func BuildCategoryReport(groups []CategoryGroup) CategoryReport {
	report := CategoryReport{Categories: groups}
	if report.Categories == nil {
		report.Categories = []CategoryGroup{}
	}
	for _, g := range groups {
		report.GrandTotal += valueOrZero(g.TotalQuantity)
		report.GrandExport += valueOrZero(g.TotalExport)
	}
	return report
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
