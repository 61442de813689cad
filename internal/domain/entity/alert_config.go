package entity

import "time"

// AlertConfig umbral de stock mínimo configurado por un administrador para un par (producto, ubicación).
type AlertConfig struct {
	ID              string
	ProductID       string
	Location        Location
	MinStockMl      int64
	EmailRecipients []string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Product *Product
}

// AlertStatus configuración junto al stock actual. IsTriggered se recalcula en cada lectura.
type AlertStatus struct {
	Config       AlertConfig
	CurrentStock int64
	IsTriggered  bool
}
