package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/pdf"
)

func deliveredRequest() *entity.Request {
	at := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	no := false
	return &entity.Request{
		ID:          "9f1c2d3e-0000-4000-8000-000000000001",
		Location:    entity.LocationBarA,
		Status:      entity.RequestDelivered,
		Notes:       "Para el turno de noche",
		CreatedAt:   at.Add(-2 * time.Hour),
		DeliveredAt: &at,
		Requester:   &entity.User{FullName: "Lucía Bartender"},
		Items: []entity.RequestItem{
			{ID: "i1", ProductID: "p1", QuantityRequested: 2, UnitType: entity.UnitBottles,
				Product: &entity.Product{Code: "RON-1", Name: "Ron Añejo"}},
			{ID: "i2", ProductID: "p2", QuantityRequested: 700, UnitType: entity.UnitMl, IsAvailable: &no,
				Product: &entity.Product{Code: "GIN-1", Name: "Gin Seco"}},
		},
	}
}

func TestReceiptGenerator_GeneraPDF(t *testing.T) {
	g := pdf.NewReceiptGenerator()
	out, err := g.Generate(context.Background(), pdf.DeliveryReceipt{
		Request:       deliveredRequest(),
		DelivererName: "Mario Bodega",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestReceiptGenerator_SoloSolicitudesEntregadas(t *testing.T) {
	req := deliveredRequest()
	req.Status = entity.RequestApproved
	req.DeliveredAt = nil

	_, err := pdf.NewReceiptGenerator().Generate(context.Background(), pdf.DeliveryReceipt{Request: req})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = pdf.NewReceiptGenerator().Generate(context.Background(), pdf.DeliveryReceipt{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
