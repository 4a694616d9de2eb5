package model

// Criterion is one scoring line item within a rubric.
type Criterion struct {
	ID        string  `json:"id" yaml:"id" validate:"required,max=64"`
	Name      string  `json:"name" yaml:"name"`
	MaxPoints float64 `json:"max_points" yaml:"max_points" validate:"min=0"`
	Position  int     `json:"position" yaml:"position" validate:"min=0"`
}

// Rubric is a named set of criteria scoped to a competition category.
type Rubric struct {
	ID       string      `json:"id" yaml:"id" validate:"required,max=64"`
	Name     string      `json:"name" yaml:"name" validate:"required,max=200"`
	Category string      `json:"category,omitempty" yaml:"category"`
	Criteria []Criterion `json:"criteria" yaml:"criteria" validate:"dive"`
}

// MaxTotal is the highest total a score can reach under this rubric.
func (r Rubric) MaxTotal() float64 {
	var total float64
	for _, c := range r.Criteria {
		total += c.MaxPoints
	}
	return total
}

// Criterion returns the criterion with the given id.
func (r Rubric) Criterion(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}
