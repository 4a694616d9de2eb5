// Package rubricfile loads rubric templates from a YAML seed file.
//
//	rubrics:
//	  - id: robotics-junior
//	    name: Junior Robotics
//	    category: junior
//	    criteria:
//	      - {id: design, name: Design, max_points: 20}
//	      - {id: build, name: Build quality, max_points: 30}
package rubricfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

var validate = validator.New()

type document struct {
	Rubrics []rubric `yaml:"rubrics" validate:"required,min=1,dive"`
}

type rubric struct {
	ID       string      `yaml:"id" validate:"required,max=64"`
	Name     string      `yaml:"name" validate:"required"`
	Category string      `yaml:"category"`
	Criteria []criterion `yaml:"criteria" validate:"dive"`
}

type criterion struct {
	ID        string  `yaml:"id" validate:"required,max=64"`
	Name      string  `yaml:"name"`
	MaxPoints float64 `yaml:"max_points" validate:"min=0"`
}

// Load reads and validates the rubric file at path.
func Load(path string) ([]model.Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric file: %w", err)
	}
	rubrics, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rubrics, nil
}

// Decode parses a rubric document. Unknown fields, duplicate ids and
// negative maxima are rejected.
func Decode(r io.Reader) ([]model.Rubric, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("rubric file is empty")
		}
		return nil, fmt.Errorf("decoding rubric yaml: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid rubric file: %w", err)
	}

	out := make([]model.Rubric, 0, len(doc.Rubrics))
	seen := make(map[string]struct{}, len(doc.Rubrics))
	for _, r := range doc.Rubrics {
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rubric id %q", r.ID)
		}
		seen[r.ID] = struct{}{}

		m := model.Rubric{ID: r.ID, Name: r.Name, Category: r.Category}
		criteria := make(map[string]struct{}, len(r.Criteria))
		for i, c := range r.Criteria {
			if _, dup := criteria[c.ID]; dup {
				return nil, fmt.Errorf("rubric %q: duplicate criterion id %q", r.ID, c.ID)
			}
			criteria[c.ID] = struct{}{}
			m.Criteria = append(m.Criteria, model.Criterion{
				ID: c.ID, Name: c.Name, MaxPoints: c.MaxPoints, Position: i + 1,
			})
		}
		out = append(out, m)
	}
	return out, nil
}
