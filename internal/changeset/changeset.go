package changeset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Action represents the type of change
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionDrop   Action = "DROP"
	ActionModify Action = "MODIFY"
)

// ErrUnknownObjectType is returned for an item whose ObjectType is not a column, index or constraint
var ErrUnknownObjectType = errors.New("unknown object type")

// Item is one compare item produced by an external diff. Fields hold the
// target-side values keyed by row field name.
type Item struct {
	Action  Action         `yaml:"action" json:"action"`
	ID      string         `yaml:"id,omitempty" json:"id,omitempty"`
	Sync    bool           `yaml:"sync" json:"sync"`
	Changed []string       `yaml:"changed,omitempty" json:"changed,omitempty"`
	Fields  map[string]any `yaml:"fields" json:"fields"`
}

// UnmarshalYAML defaults Sync to true when the key is absent
func (it *Item) UnmarshalYAML(value *yaml.Node) error {
	type plain Item
	p := plain{Sync: true}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*it = Item(p)
	return nil
}

func (it *Item) String() string {
	return fmt.Sprintf("%s %s %s.%s.%s", it.Action, it.ObjectType(), it.Schema(), it.TableName(), it.Name())
}

// Field returns a raw field value
func (it *Item) Field(name string) (any, bool) {
	v, ok := it.Fields[name]
	return v, ok
}

// StringField returns a field converted to a string; missing fields are empty
func (it *Item) StringField(name string) string {
	v, ok := it.Field(name)
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

func (it *Item) Schema() string     { return it.StringField("Schema") }
func (it *Item) ObjectType() string { return strings.ToUpper(it.StringField("ObjectType")) }
func (it *Item) TableName() string  { return it.StringField("TableName") }
func (it *Item) Name() string       { return it.StringField("Name") }

// ExistingName returns the native object name, falling back to Name
func (it *Item) ExistingName() string {
	if it.ID != "" {
		return it.ID
	}
	return it.Name()
}

// HasChanged reports whether a field is listed in Changed, ignoring case
func (it *Item) HasChanged(names ...string) bool {
	for _, c := range it.Changed {
		for _, n := range names {
			if strings.EqualFold(c, n) {
				return true
			}
		}
	}
	return false
}

// Set is the add, update and delete lists applied by the writer
type Set struct {
	Add    []*Item
	Update []*Item
	Delete []*Item
}

// Len returns the total number of items
func (s *Set) Len() int {
	return len(s.Add) + len(s.Update) + len(s.Delete)
}

// Parse reads a YAML or JSON list of items
func Parse(data []byte) (*Set, error) {
	var items []*Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse change set: %w", err)
	}

	set := &Set{}
	for i, item := range items {
		if item == nil {
			continue
		}
		switch Action(strings.ToUpper(string(item.Action))) {
		case ActionAdd:
			item.Action = ActionAdd
			set.Add = append(set.Add, item)
		case ActionModify:
			item.Action = ActionModify
			set.Update = append(set.Update, item)
		case ActionDrop:
			item.Action = ActionDrop
			set.Delete = append(set.Delete, item)
		default:
			return nil, fmt.Errorf("item %d: unknown action %q", i, item.Action)
		}
	}
	return set, nil
}

// Load reads a change set file
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read change set: %w", err)
	}
	return Parse(data)
}

// Display prints a summary of the change set
func Display(w io.Writer, set *Set) {
	if set.Len() == 0 {
		fmt.Fprintln(w, "No changes.")
		return
	}

	sections := []struct {
		title string
		items []*Item
	}{
		{"Add", set.Add},
		{"Update", set.Update},
		{"Delete", set.Delete},
	}
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		fmt.Fprintf(w, "=== %s (%d) ===\n", section.title, len(section.items))
		for _, item := range section.items {
			fmt.Fprintf(w, "  %s.%s: %s %s", item.Schema(), item.TableName(), item.ObjectType(), item.Name())
			if len(item.Changed) > 0 {
				fmt.Fprintf(w, " [%s]", strings.Join(item.Changed, ", "))
			}
			if !item.Sync {
				fmt.Fprint(w, " (skipped)")
			}
			fmt.Fprintln(w)
		}
	}
}
