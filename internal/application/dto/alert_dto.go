package dto

import (
	"time"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// AlertConfigRequest body de alta y edición de una alerta. En edición, nil no modifica.
type AlertConfigRequest struct {
	ProductID       string   `json:"product_id"`
	Location        string   `json:"location"`
	MinStockMl      *int64   `json:"min_stock_ml"`
	EmailRecipients []string `json:"email_recipients"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

// AlertConfigResponse configuración de alerta.
type AlertConfigResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name,omitempty"`
	ProductCode     string    `json:"product_code,omitempty"`
	Location        string    `json:"location"`
	MinStockMl      int64     `json:"min_stock_ml"`
	EmailRecipients []string  `json:"email_recipients"`
	IsActive        bool      `json:"is_active"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AlertStatusResponse configuración con stock actual y estado disparado.
type AlertStatusResponse struct {
	AlertConfigResponse
	CurrentStock int64 `json:"current_stock"`
	IsTriggered  bool  `json:"is_triggered"`
}

// NotifyAlertsResponse resultado de POST /api/alerts/notify.
type NotifyAlertsResponse struct {
	Notified int `json:"notified"`
}

// AlertConfigFromEntity construye la respuesta de la configuración.
func AlertConfigFromEntity(c *entity.AlertConfig) AlertConfigResponse {
	out := AlertConfigResponse{
		ID:              c.ID,
		ProductID:       c.ProductID,
		Location:        string(c.Location),
		MinStockMl:      c.MinStockMl,
		EmailRecipients: c.EmailRecipients,
		IsActive:        c.IsActive,
		UpdatedAt:       c.UpdatedAt,
	}
	if out.EmailRecipients == nil {
		out.EmailRecipients = []string{}
	}
	if c.Product != nil {
		out.ProductName = c.Product.Name
		out.ProductCode = c.Product.Code
	}
	return out
}

// AlertStatusesFromEntity convierte los estados evaluados.
func AlertStatusesFromEntity(in []entity.AlertStatus) []AlertStatusResponse {
	out := make([]AlertStatusResponse, 0, len(in))
	for i := range in {
		out = append(out, AlertStatusResponse{
			AlertConfigResponse: AlertConfigFromEntity(&in[i].Config),
			CurrentStock:        in[i].CurrentStock,
			IsTriggered:         in[i].IsTriggered,
		})
	}
	return out
}
