// Package fixtures provides the seed principals and inspections loaded into a fresh store.
package fixtures

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Set is a decoded fixture file.
type Set struct {
	Users       []models.User       `yaml:"users"`
	Inspections []models.Inspection `yaml:"inspections"`
}

// Default returns the built-in fixtures: one student, one admin and three
// inspections covering every status.
func Default() (*Set, error) {
	return Decode(bytes.NewReader(defaultFixtures))
}

// Decode reads a fixture set from YAML and checks its records.
func Decode(r io.Reader) (*Set, error) {
	var set Set
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	for _, u := range set.Users {
		if u.ID == "" || u.Email == "" || !u.Role.Valid() {
			return nil, fmt.Errorf("invalid fixture user %q", u.ID)
		}
	}
	for _, in := range set.Inspections {
		if in.ID == "" || in.StudentID == "" || !in.Status.Valid() {
			return nil, fmt.Errorf("invalid fixture inspection %q", in.ID)
		}
		if in.Feedback != nil && in.Status != models.StatusResolved {
			return nil, fmt.Errorf("fixture inspection %q has feedback before resolution", in.ID)
		}
	}
	return &set, nil
}
