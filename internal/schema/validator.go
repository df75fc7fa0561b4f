package schema

import (
	"fmt"
	"io/fs"
	"strings"

	"catalog/feedsync/internal/domain"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
	log "github.com/sirupsen/logrus"
)

// Validator checks produced documents against an XSD before they are delivered.
type Validator struct {
	name   string
	schema *xsd.Schema
}

// LoadFile compiles the schema at path.
func LoadFile(path string) (*Validator, error) {
	schema, err := xsd.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", path, err)
	}
	return &Validator{name: path, schema: schema}, nil
}

// Load compiles the schema at location inside fsys.
func Load(fsys fs.FS, location string) (*Validator, error) {
	schema, err := xsd.Load(fsys, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", location, err)
	}
	return &Validator{name: location, schema: schema}, nil
}

// Validate returns a *domain.ValidationError listing the violations, if any.
func (v *Validator) Validate(document string) error {
	err := v.schema.Validate(strings.NewReader(document))
	if err == nil {
		return nil
	}

	if violations, ok := xsderrors.AsValidations(err); ok {
		msgs := make([]string, 0, len(violations))
		for _, violation := range violations {
			msgs = append(msgs, violation.Error())
		}
		log.Debugf("Schema %s reported %d violations", v.name, len(violations))
		return &domain.ValidationError{Schema: v.name, Err: fmt.Errorf("%s", strings.Join(msgs, "; "))}
	}

	return &domain.ValidationError{Schema: v.name, Err: err}
}
