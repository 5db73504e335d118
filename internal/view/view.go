// Package view projects controller state into a presentation-neutral view model.
package view

import (
	"github.com/studiowebux/restdeck/internal/app"
	"github.com/studiowebux/restdeck/internal/types"
)

const (
	ActionsLabel = "Actions"
	EditAction   = "Edit"
	LoadingText  = "Loading..."
	CheckMark    = "✅"
	CrossMark    = "❌"
)

// NavItem is one sidebar entry
type NavItem struct {
	Key    string
	Title  string
	Active bool
}

// Column is one table header
type Column struct {
	Name   string // field name, empty for the actions column
	Label  string
	Action bool
}

// Row is one record in the table
type Row struct {
	ID    int64
	Cells []string // one per column, the last one being the edit action
}

// Table lists the active store
type Table struct {
	Columns []Column
	Rows    []Row
}

// Option is one choice of a boolean field
type Option struct {
	Label string
	Value string
}

// FormField is one input of the add/edit form
type FormField struct {
	Name        string
	Label       string
	Kind        types.FieldKind
	Value       string
	Required    bool
	Placeholder string
	Options     []Option // boolean fields only
}

// Form is the shared add/edit form
type Form struct {
	Mode        app.FormMode
	Title       string
	SubmitLabel string
	TargetID    int64
	Fields      []FormField
}

// Model is everything a presentation layer needs to draw one frame
type Model struct {
	Title   string
	Nav     []NavItem
	Loading bool
	Error   string
	Table   *Table // nil while loading or on error
	Form    *Form  // nil when no form is open
}

// Render is a pure projection of snap
func Render(snap app.Snapshot) Model {
	m := Model{
		Title:   snap.Active.Title,
		Nav:     renderNav(snap),
		Loading: snap.Request.Loading,
		Error:   snap.Request.Error,
	}

	if !m.Loading && m.Error == "" {
		m.Table = renderTable(snap.Active, snap.Records)
	}
	if snap.Form.Active() {
		m.Form = renderForm(snap.Active, snap.Form)
	}
	return m
}

func renderNav(snap app.Snapshot) []NavItem {
	items := make([]NavItem, len(snap.Collections))
	for i, c := range snap.Collections {
		items[i] = NavItem{Key: c.Key, Title: c.Title, Active: c.Key == snap.Active.Key}
	}
	return items
}

func renderTable(collection types.Collection, records []types.Record) *Table {
	fields := collection.DisplayFields()

	t := &Table{Columns: make([]Column, 0, len(fields)+1)}
	for _, f := range fields {
		t.Columns = append(t.Columns, Column{Name: f.Name, Label: f.Label})
	}
	t.Columns = append(t.Columns, Column{Label: ActionsLabel, Action: true})

	t.Rows = make([]Row, 0, len(records))
	for _, rec := range records {
		id, _ := rec.ID()
		row := Row{ID: id, Cells: make([]string, 0, len(t.Columns))}
		for _, f := range fields {
			row.Cells = append(row.Cells, Cell(f, rec))
		}
		row.Cells = append(row.Cells, EditAction)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Cell formats one field of rec for the table
func Cell(field types.Field, rec types.Record) string {
	if field.Kind == types.KindBoolean {
		b, ok := rec[field.Name].(bool)
		if !ok {
			return ""
		}
		if b {
			return CheckMark
		}
		return CrossMark
	}
	return rec.Text(field.Name)
}

func renderForm(collection types.Collection, state app.FormState) *Form {
	f := &Form{
		Mode:     state.Mode,
		TargetID: state.TargetID,
	}
	switch state.Mode {
	case app.FormAdd:
		f.Title = "Add New " + collection.Title
		f.SubmitLabel = "Add"
	case app.FormEdit:
		f.Title = "Edit " + collection.Title
		f.SubmitLabel = "Update"
	}

	for _, field := range collection.EditableFields() {
		ff := FormField{
			Name:        field.Name,
			Label:       field.Label,
			Kind:        field.Kind,
			Required:    field.Required,
			Placeholder: field.Placeholder,
		}
		if field.Kind == types.KindBoolean {
			ff.Options = []Option{{Label: "Yes", Value: "true"}, {Label: "No", Value: "false"}}
			if b, ok := state.Pending[field.Name].(bool); ok {
				if b {
					ff.Value = "true"
				} else {
					ff.Value = "false"
				}
			}
		} else {
			ff.Value = state.Pending.Text(field.Name)
		}
		f.Fields = append(f.Fields, ff)
	}
	return f
}
