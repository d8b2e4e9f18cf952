package filtertoken

// Bounds is the lowest and highest value available for a range family.
type Bounds struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// Catalog lists the selectable options shown next to the filter inputs.
// The engine only stores it; consolidation never reads it.
type Catalog struct {
	Categories []string `json:"categorias"`
	Locations  []string `json:"ubicaciones"`
	States     []string `json:"estados"`
	Types      []string `json:"tipos,omitempty"`
	Priorities []string `json:"prioridades,omitempty"`
	Years      Bounds   `json:"anios"`
	Prices     Bounds   `json:"precios"`
	Dates      Bounds   `json:"fechas"`
}

// Clone returns a copy of c that shares no slices with it.
func (c Catalog) Clone() Catalog {
	out := c
	out.Categories = append([]string(nil), c.Categories...)
	out.Locations = append([]string(nil), c.Locations...)
	out.States = append([]string(nil), c.States...)
	out.Types = append([]string(nil), c.Types...)
	out.Priorities = append([]string(nil), c.Priorities...)
	return out
}
