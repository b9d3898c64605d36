package generator

import (
	"fmt"

	"github.com/koba/schemasync/internal/changeset"
	"github.com/koba/schemasync/internal/database"
	"github.com/koba/schemasync/internal/schema"
)

// Generator renders the statements for compare items through a dialect
type Generator struct {
	dialect database.Dialect
}

// New creates a generator for dialect
func New(dialect database.Dialect) *Generator {
	return &Generator{dialect: dialect}
}

// Batch is the set of items that target one table
type Batch struct {
	Table *schema.Table
	Items []*changeset.Item
}

// Failure is an item that could not be turned into a schema object
type Failure struct {
	Item *changeset.Item
	Err  error
}

// GroupCreates groups add items by table. Indexes keep their synchronization name.
// key decides which items address the same table.
func GroupCreates(items []*changeset.Item, key schema.KeyFunc) ([]*Batch, []Failure) {
	return groupByTable(items, key, (*changeset.Item).Name)
}

// GroupDeletes groups delete items by table. Indexes are named by their
// native name so the existing object is dropped.
func GroupDeletes(items []*changeset.Item, key schema.KeyFunc) ([]*Batch, []Failure) {
	return groupByTable(items, key, (*changeset.Item).ExistingName)
}

// groupByTable skips items not flagged to sync and keeps the order in which
// tables were first seen. A batch takes the names of its first item.
func groupByTable(items []*changeset.Item, tableKey schema.KeyFunc, indexName func(*changeset.Item) string) ([]*Batch, []Failure) {
	if tableKey == nil {
		tableKey = schema.TableKey
	}

	var batches []*Batch
	var failures []Failure
	byKey := make(map[string]*Batch)

	for _, item := range items {
		if !item.Sync {
			continue
		}

		key := tableKey(item.Schema(), item.TableName())
		b, ok := byKey[key]
		if !ok {
			b = &Batch{Table: &schema.Table{Schema: item.Schema(), Name: item.TableName()}}
		}

		switch {
		case item.IsColumn():
			c, err := item.Column()
			if err != nil {
				failures = append(failures, Failure{Item: item, Err: err})
				continue
			}
			b.Table.Columns = append(b.Table.Columns, c)
		case item.IsIndex():
			idx, err := item.Index()
			if err != nil {
				failures = append(failures, Failure{Item: item, Err: err})
				continue
			}
			idx.Name = indexName(item)
			b.Table.Indexes = append(b.Table.Indexes, idx)
		default:
			failures = append(failures, Failure{
				Item: item,
				Err:  fmt.Errorf("%w: %q", changeset.ErrUnknownObjectType, item.ObjectType()),
			})
			continue
		}

		if !ok {
			byKey[key] = b
			batches = append(batches, b)
		}
		b.Items = append(b.Items, item)
	}

	return batches, failures
}
