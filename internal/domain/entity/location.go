package entity

// Location identifica una de las ubicaciones fijas del negocio. No es una entidad dinámica.
type Location string

// Ubicaciones válidas.
const (
	LocationWarehouse Location = "warehouse" // bodega central
	LocationBarA      Location = "bar_a"
	LocationBarB      Location = "bar_b"
)

// Locations devuelve todas las ubicaciones en orden de presentación.
func Locations() []Location {
	return []Location{LocationWarehouse, LocationBarA, LocationBarB}
}

var locationNames = map[Location]string{
	LocationWarehouse: "Bodega",
	LocationBarA:      "Bar Casa Sanz",
	LocationBarB:      "Bar Hotel Bidasoa",
}

// Valid indica si la ubicación pertenece al enum cerrado.
func (l Location) Valid() bool {
	_, ok := locationNames[l]
	return ok
}

// IsBar es verdadero para bar_a y bar_b (destinos válidos de una solicitud).
func (l Location) IsBar() bool {
	return l == LocationBarA || l == LocationBarB
}

// DisplayName nombre legible para correos y exportaciones.
func (l Location) DisplayName() string {
	if n, ok := locationNames[l]; ok {
		return n
	}
	return string(l)
}

// ParseLocation valida un string contra el enum.
func ParseLocation(s string) (Location, bool) {
	l := Location(s)
	return l, l.Valid()
}
