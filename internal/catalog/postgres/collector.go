// Package postgres collects catalog.Metadata from a live PostgreSQL
// database by querying pg_catalog.
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/database"
	"github.com/koustreak/pgmeta/internal/errs"
	"github.com/koustreak/pgmeta/internal/logger"
)

// Collector implements catalog.Collector over a database.DB.
// It is safe for concurrent use; each Collect call issues its own queries.
type Collector struct {
	db      database.DB
	timeout time.Duration
}

var _ catalog.Collector = (*Collector)(nil)

// New returns a Collector. A positive timeout bounds every Collect call.
func New(db database.DB, timeout time.Duration) *Collector {
	return &Collector{db: db, timeout: timeout}
}

// Collect reads the whole catalog and restricts it to the schemas allowed by f.
func (c *Collector) Collect(ctx context.Context, f catalog.Filter) (*catalog.Metadata, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	m := &catalog.Metadata{}
	steps := []struct {
		name string
		run  func(context.Context, *catalog.Metadata) error
	}{
		{"schemas", c.schemas},
		{"relations", c.relations},
		{"columns", c.columns},
		{"relationships", c.relationships},
		{"functions", c.functions},
		{"types", c.types},
	}
	for _, step := range steps {
		if err := step.run(ctx, m); err != nil {
			return nil, wrap(err, "collect "+step.name)
		}
	}

	out := f.Apply(m)
	logger.FromContext(ctx).With().
		Int("schemas", len(out.Schemas)).
		Int("relations", len(out.Relations())).
		Int("functions", len(out.Functions)).
		Int("types", len(out.Types)).
		Str("elapsed", time.Since(start).String()).
		Logger().Debug("catalog collected")
	return out, nil
}

// wrap keeps the driver's error kind and adds the failing step.
func wrap(err error, msg string) error {
	kind := errs.KindOf(err)
	if kind == errs.ErrKindUnknown {
		kind = errs.ErrKindQueryFailed
	}
	return errs.Wrap(kind, msg, err)
}

// each runs q and calls scan once per row.
func (c *Collector) each(ctx context.Context, q string, scan func(database.Rows) error) error {
	rows, err := c.db.Query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c *Collector) schemas(ctx context.Context, m *catalog.Metadata) error {
	return c.each(ctx, schemasQuery, func(rows database.Rows) error {
		var s catalog.Schema
		if err := rows.Scan(&s.ID, &s.Name, &s.Owner); err != nil {
			return err
		}
		m.Schemas = append(m.Schemas, s)
		return nil
	})
}

func (c *Collector) relations(ctx context.Context, m *catalog.Metadata) error {
	return c.each(ctx, relationsQuery, func(rows database.Rows) error {
		var (
			r       catalog.Relation
			relkind string
		)
		if err := rows.Scan(&r.ID, &r.Schema, &r.Name, &relkind, &r.IsUpdatable, &r.Comment); err != nil {
			return err
		}
		switch relkind {
		case "r", "p":
			r.Kind = catalog.KindTable
			m.Tables = append(m.Tables, r)
		case "v":
			r.Kind = catalog.KindView
			m.Views = append(m.Views, r)
		case "m":
			r.Kind = catalog.KindMaterializedView
			m.MaterializedViews = append(m.MaterializedViews, r)
		case "f":
			r.Kind = catalog.KindForeignTable
			m.ForeignTables = append(m.ForeignTables, r)
		}
		return nil
	})
}

func (c *Collector) columns(ctx context.Context, m *catalog.Metadata) error {
	return c.each(ctx, columnsQuery, func(rows database.Rows) error {
		var (
			col catalog.Column
			pos int64
		)
		if err := rows.Scan(&col.TableID, &col.Schema, &col.Table, &col.Name, &col.Format, &pos,
			&col.IsNullable, &col.IsIdentity, &col.IdentityGeneration, &col.DefaultValue,
			&col.IsUpdatable, &col.Comment); err != nil {
			return err
		}
		col.OrdinalPosition = int(pos)
		m.Columns = append(m.Columns, col)
		return nil
	})
}

func (c *Collector) relationships(ctx context.Context, m *catalog.Metadata) error {
	return c.each(ctx, relationshipsQuery, func(rows database.Rows) error {
		var r catalog.Relationship
		if err := rows.Scan(&r.ForeignKeyName, &r.Schema, &r.Relation, &r.Columns,
			&r.ReferencedSchema, &r.ReferencedRelation, &r.ReferencedColumns, &r.IsOneToOne); err != nil {
			return err
		}
		m.Relationships = append(m.Relationships, r)
		return nil
	})
}

func (c *Collector) functions(ctx context.Context, m *catalog.Metadata) error {
	return c.each(ctx, functionsQuery, func(rows database.Rows) error {
		var (
			fn       catalog.Function
			args     string
			defaults int64
		)
		if err := rows.Scan(&fn.ID, &fn.Schema, &fn.Name, &args, &defaults,
			&fn.ReturnTypeID, &fn.ReturnTypeRelationID, &fn.IsSetReturningFunction, &fn.Definition); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(args), &fn.Args); err != nil {
			return errs.Wrap(errs.ErrKindQueryFailed, "decode arguments of "+fn.Name, err)
		}
		markDefaults(fn.Args, int(defaults))
		m.Functions = append(m.Functions, fn)
		return nil
	})
}

// markDefaults flags the trailing n input arguments, the ones
// pronargdefaults counts.
func markDefaults(args []catalog.FunctionArg, n int) {
	for i := len(args) - 1; i >= 0 && n > 0; i-- {
		if args[i].IsInput() {
			args[i].HasDefault = true
			n--
		}
	}
}

func (c *Collector) types(ctx context.Context, m *catalog.Metadata) error {
	return c.each(ctx, typesQuery, func(rows database.Rows) error {
		var (
			t           catalog.Type
			enums, attr string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Schema, &enums, &attr, &t.TypeRelationID, &t.Comment); err != nil {
			return err
		}
		t.Format = t.Name
		if err := json.Unmarshal([]byte(enums), &t.Enums); err != nil {
			return errs.Wrap(errs.ErrKindQueryFailed, "decode enum labels of "+t.Name, err)
		}
		if err := json.Unmarshal([]byte(attr), &t.Attributes); err != nil {
			return errs.Wrap(errs.ErrKindQueryFailed, "decode attributes of "+t.Name, err)
		}
		m.Types = append(m.Types, t)
		return nil
	})
}
