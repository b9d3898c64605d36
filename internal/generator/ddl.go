package generator

import (
	"context"
	"fmt"

	"github.com/koba/schemasync/internal/changeset"
	"github.com/koba/schemasync/internal/database"
)

// Fields whose change requires redefining the column
var alterColumnFields = []string{"Length", "NotNull", "DataType", "Precision", "Scale"}

// Add renders the statement for an add item
func (g *Generator) Add(s *database.Session, item *changeset.Item) (string, error) {
	switch {
	case item.IsColumn():
		c, err := item.Column()
		if err != nil {
			return "", err
		}
		return g.dialect.GenerateAddTableColumn(s, item.Schema(), item.TableName(), &c)

	case item.IsIndex():
		idx, err := item.Index()
		if err != nil {
			return "", err
		}
		return g.dialect.GenerateCreateIndex(s, item.Schema(), item.TableName(), &idx)
	}

	return "", fmt.Errorf("%w: %q", changeset.ErrUnknownObjectType, item.ObjectType())
}

// Update renders the statements for an update item in execution order.
//
// A column gets an alter statement when its type, size or nullability changed
// and a separate default statement when its default changed. Indexes are always
// dropped by their existing name and recreated.
func (g *Generator) Update(s *database.Session, item *changeset.Item) ([]string, error) {
	switch {
	case item.IsColumn():
		c, err := item.Column()
		if err != nil {
			return nil, err
		}

		var statements []string
		if item.HasChanged(alterColumnFields...) {
			stmt, err := g.dialect.GenerateAlterTableColumn(s, item.Schema(), item.TableName(), &c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
		}
		if item.HasChanged("ColumnDefault") {
			stmt, err := g.dialect.GenerateAlterColumnDefault(s, item.Schema(), item.TableName(), &c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
		}
		return statements, nil

	case item.IsIndex():
		idx, err := item.Index()
		if err != nil {
			return nil, err
		}
		stmt, err := g.dialect.GenerateAlterIndex(s, item.Schema(), item.TableName(), &idx, item.ExistingName())
		if err != nil {
			return nil, err
		}
		return []string{stmt}, nil
	}

	return nil, fmt.Errorf("%w: %q", changeset.ErrUnknownObjectType, item.ObjectType())
}

// CreateTableObjects renders the statements that create a batch's table or add its columns and indexes
func (g *Generator) CreateTableObjects(ctx context.Context, s *database.Session, b *Batch) (string, error) {
	return g.dialect.GenerateCreateTableObjects(ctx, s, b.Table)
}

// DeleteTableObjects renders the statements that drop a batch's table or its columns and indexes
func (g *Generator) DeleteTableObjects(ctx context.Context, s *database.Session, b *Batch) (string, error) {
	return g.dialect.GenerateDeleteTableObjects(ctx, s, b.Table)
}
