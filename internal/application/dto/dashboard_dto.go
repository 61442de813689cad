package dto

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary. TotalProducts cuenta
// productos activos; LowStockCount, registros bajo su umbral que aún tienen stock;
// OutOfStockCount, registros en 0 ml.
type DashboardSummaryDTO struct {
	TotalProducts   int `json:"total_products"`
	LowStockCount   int `json:"low_stock_count"`
	OutOfStockCount int `json:"out_of_stock_count"`
	PendingRequests int `json:"pending_requests"`
	TriggeredAlerts int `json:"triggered_alerts"`

	// Conteo por ubicación de registros bajo umbral o agotados.
	ByLocation []LocationStockDTO `json:"by_location"`
}

// LocationStockDTO resumen de stock de una ubicación.
type LocationStockDTO struct {
	Location   string `json:"location"`
	Name       string `json:"name"`
	Records    int    `json:"records"`
	LowStock   int    `json:"low_stock"`
	OutOfStock int    `json:"out_of_stock"`
}
