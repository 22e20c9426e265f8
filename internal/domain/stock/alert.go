package stock

import (
	"fmt"
	"time"
)

// AlertType classifies a derived stock warning.
type AlertType string

const (
	AlertLowStock    AlertType = "low_stock"
	AlertOutOfStock  AlertType = "out_of_stock"
	AlertOverstocked AlertType = "overstocked"
)

// Alert is a derived warning about a stock line. Alerts are recomputed from
// current quantities on every ledger change and are never persisted.
type Alert struct {
	Type      AlertType `json:"type"`
	Brand     GasBrand  `json:"brand"`
	GasType   GasType   `json:"gas_type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func computeAlerts(lines []StockLine) []Alert {
	now := time.Now()
	alerts := make([]Alert, 0)
	for i := range lines {
		line := &lines[i]
		switch {
		case line.IsOutOfStock() && line.IsAvailable:
			alerts = append(alerts, Alert{
				Type:      AlertOutOfStock,
				Brand:     line.Brand,
				GasType:   line.GasType,
				Message:   fmt.Sprintf("%s %s is out of stock", line.Brand, line.GasType),
				CreatedAt: now,
			})
		case line.IsLowStock() && line.IsAvailable:
			alerts = append(alerts, Alert{
				Type:      AlertLowStock,
				Brand:     line.Brand,
				GasType:   line.GasType,
				Message:   fmt.Sprintf("%s %s is running low (%d units remaining)", line.Brand, line.GasType, line.AvailableQuantity),
				CreatedAt: now,
			})
		case line.AvailableQuantity > line.MaxStockLevel:
			alerts = append(alerts, Alert{
				Type:      AlertOverstocked,
				Brand:     line.Brand,
				GasType:   line.GasType,
				Message:   fmt.Sprintf("%s %s is overstocked (%d units)", line.Brand, line.GasType, line.AvailableQuantity),
				CreatedAt: now,
			})
		}
	}
	return alerts
}
