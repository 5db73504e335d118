package app

import (
	"strings"

	"github.com/studiowebux/restdeck/internal/types"
)

// FormMode is the state of the shared add/edit form
type FormMode int

const (
	FormNone FormMode = iota
	FormAdd
	FormEdit
)

func (m FormMode) String() string {
	switch m {
	case FormAdd:
		return "add"
	case FormEdit:
		return "edit"
	default:
		return "none"
	}
}

// FormState is the single application-wide form
type FormState struct {
	Mode     FormMode
	TargetID int64 // only meaningful in FormEdit
	Pending  types.Record
}

// Active reports whether a form is open
func (f FormState) Active() bool {
	return f.Mode != FormNone
}

func (f FormState) clone() FormState {
	f.Pending = f.Pending.Clone()
	return f
}

// missingRequired returns the required fields of collection that pending leaves empty
func missingRequired(collection types.Collection, pending types.Record) *ValidationError {
	var verr *ValidationError
	for _, field := range collection.Fields {
		if !field.Required || isSet(field, pending[field.Name]) {
			continue
		}
		if verr == nil {
			verr = &ValidationError{Collection: collection.Key}
		}
		verr.Fields = append(verr.Fields, field.Name)
		verr.Labels = append(verr.Labels, field.Label)
	}
	return verr
}

func isSet(field types.Field, value any) bool {
	if value == nil {
		return false
	}
	if field.Kind == types.KindBoolean {
		_, ok := value.(bool)
		return ok
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// merge overlays pending onto base; the id of base always wins
func merge(base, pending types.Record) types.Record {
	out := base.Clone()
	if out == nil {
		out = types.Record{}
	}
	for k, v := range pending {
		if k == types.IDField {
			continue
		}
		out[k] = v
	}
	return out
}
