package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-bares/internal/application/dto"
)

func TestDefaultPage_NormalizaLimites(t *testing.T) {
	cases := []struct {
		in, want dto.PageRequest
	}{
		{dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		{dto.PageRequest{Limit: -5, Offset: -1}, dto.PageRequest{Limit: 20}},
		{dto.PageRequest{Limit: 500, Offset: 40}, dto.PageRequest{Limit: 100, Offset: 40}},
		{dto.PageRequest{Limit: 10, Offset: 30}, dto.PageRequest{Limit: 10, Offset: 30}},
	}
	for _, c := range cases {
		page := c.in
		page.DefaultPage()
		assert.Equal(t, c.want, page, "entrada %+v", c.in)
	}
}

func TestPageRequest_ResponseCopiaLaPagina(t *testing.T) {
	page := dto.PageRequest{Limit: 50, Offset: 100}
	assert.Equal(t, dto.PageResponse{Limit: 50, Offset: 100}, page.Response())
}
