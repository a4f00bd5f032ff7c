package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a form field name does not map to ProjectData
var ErrUnknownField = errors.New("unknown project field")

// Form field names, shared by the web form, YAML input files and the prompt
const (
	FieldName                = "name"
	FieldDescription         = "description"
	FieldTimeline            = "timeline"
	FieldBudget              = "budget"
	FieldInitialRequirements = "initialRequirements"
	FieldConstraints         = "constraints"
)

// Fields lists every ProjectData field in form order
var Fields = []string{
	FieldName,
	FieldTimeline,
	FieldDescription,
	FieldBudget,
	FieldConstraints,
	FieldInitialRequirements,
}

// RequiredFields lists the fields that must be non-empty before submission
var RequiredFields = []string{
	FieldName,
	FieldDescription,
	FieldTimeline,
	FieldInitialRequirements,
}

// ProjectData represents the project intake form
type ProjectData struct {
	Name                string `json:"name" yaml:"name"`
	Description         string `json:"description" yaml:"description"`
	Timeline            string `json:"timeline" yaml:"timeline"`
	Budget              string `json:"budget" yaml:"budget"`
	InitialRequirements string `json:"initialRequirements" yaml:"initialRequirements"`
	Constraints         string `json:"constraints" yaml:"constraints"`
}

// Set updates a single field by its form name
func (p *ProjectData) Set(field, value string) error {
	switch field {
	case FieldName:
		p.Name = value
	case FieldDescription:
		p.Description = value
	case FieldTimeline:
		p.Timeline = value
	case FieldBudget:
		p.Budget = value
	case FieldInitialRequirements:
		p.InitialRequirements = value
	case FieldConstraints:
		p.Constraints = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns a single field by its form name
func (p ProjectData) Get(field string) (string, error) {
	switch field {
	case FieldName:
		return p.Name, nil
	case FieldDescription:
		return p.Description, nil
	case FieldTimeline:
		return p.Timeline, nil
	case FieldBudget:
		return p.Budget, nil
	case FieldInitialRequirements:
		return p.InitialRequirements, nil
	case FieldConstraints:
		return p.Constraints, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// MissingRequired returns the required fields that are empty or whitespace only
func (p ProjectData) MissingRequired() []string {
	var missing []string
	for _, field := range RequiredFields {
		value, _ := p.Get(field)
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// IsComplete reports whether every required field is populated
func (p ProjectData) IsComplete() bool {
	return len(p.MissingRequired()) == 0
}
