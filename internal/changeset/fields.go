package changeset

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/koba/schemasync/internal/schema"
)

// IsColumn reports whether the item describes a table column
func (it *Item) IsColumn() bool {
	return it.ObjectType() == schema.ObjectTypeColumn
}

// IsIndex reports whether the item describes an index or a constraint
func (it *Item) IsIndex() bool {
	switch it.ObjectType() {
	case schema.ObjectTypeIndex, schema.ObjectTypeConstraint:
		return true
	}
	return false
}

// Column rebuilds a column from the item fields. A missing Length means unbounded.
func (it *Item) Column() (schema.Column, error) {
	if !it.IsColumn() {
		return schema.Column{}, fmt.Errorf("%w: %q is not a column", ErrUnknownObjectType, it.ObjectType())
	}

	dataType, err := it.dataType()
	if err != nil {
		return schema.Column{}, err
	}
	def, err := it.defaultValue()
	if err != nil {
		return schema.Column{}, err
	}

	c := schema.Column{
		Name:       it.Name(),
		Type:       dataType,
		Identity:   it.boolField("IsIdentity"),
		PrimaryKey: it.boolField("IsPrimaryKey"),
		NotNull:    it.boolField("NotNull"),
		Length:     -1,
		Default:    def,
	}
	if v, ok := it.Field("Length"); ok && v != nil {
		if c.Length, err = cast.ToIntE(v); err != nil {
			return schema.Column{}, fmt.Errorf("invalid Length for %s: %w", c.Name, err)
		}
	}
	if c.IsPrecisionScaleType() {
		c.Precision = cast.ToInt(it.Fields["Precision"])
		c.Scale = cast.ToInt(it.Fields["Scale"])
	}
	return c, nil
}

// Index rebuilds an index or constraint from the item fields. Name is the
// synchronization name; the native name is ExistingName.
func (it *Item) Index() (schema.Index, error) {
	if !it.IsIndex() {
		return schema.Index{}, fmt.Errorf("%w: %q is not an index", ErrUnknownObjectType, it.ObjectType())
	}

	idx := schema.Index{
		Name:       it.Name(),
		Columns:    it.listField("Columns"),
		Include:    it.listField("Include"),
		PrimaryKey: it.boolField("IsPrimaryKey"),
		Clustered:  it.boolField("IsClustered"),
		Unique:     it.boolField("IsUnique"),
		Type:       schema.IndexTypeFromObjectType(it.ObjectType()),
	}
	if idx.PrimaryKey {
		idx.Type = schema.IndexTypeConstraint
	}
	return idx, nil
}

func (it *Item) boolField(name string) bool {
	return cast.ToBool(it.Fields[name])
}

// listField accepts a sequence or a comma separated string
func (it *Item) listField(name string) []string {
	v, ok := it.Field(name)
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return cast.ToStringSlice(v)
}

// dataType accepts the type name or its numeric value
func (it *Item) dataType() (schema.DataType, error) {
	v, ok := it.Field("DataType")
	if !ok || v == nil {
		return 0, fmt.Errorf("missing DataType for %s", it.Name())
	}
	if s, ok := v.(string); ok {
		return schema.ParseDataType(s)
	}
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 || n >= len(schema.DataTypes()) {
		return 0, fmt.Errorf("invalid DataType %v for %s", v, it.Name())
	}
	return schema.DataType(n), nil
}

func (it *Item) defaultValue() (schema.Default, error) {
	v, ok := it.Field("ColumnDefault")
	if !ok || v == nil {
		return schema.DefaultNone, nil
	}
	if s, ok := v.(string); ok {
		return schema.ParseDefault(s)
	}
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 || n >= len(schema.Defaults()) {
		return schema.DefaultNone, fmt.Errorf("invalid ColumnDefault %v for %s", v, it.Name())
	}
	return schema.Default(n), nil
}
