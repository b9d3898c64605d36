package writer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/koba/schemasync/internal/changeset"
	"github.com/koba/schemasync/internal/database"
	"github.com/koba/schemasync/internal/generator"
	"github.com/koba/schemasync/internal/status"
)

// Options gates statement output and execution
type Options struct {
	OutputSQLTrace bool // report each statement through Status.Message
	DoNotExecute   bool // render only
	BatchAdd       bool // create tables and add their objects per table in the add phase
}

// DefaultOptions traces and does not execute
func DefaultOptions() Options {
	return Options{OutputSQLTrace: true, DoNotExecute: true}
}

// Writer applies change sets through a dialect
type Writer struct {
	dialect database.Dialect
	gen     *generator.Generator
	opts    Options
	logger  *slog.Logger
}

// New creates a writer. A nil logger uses slog.Default().
func New(dialect database.Dialect, opts Options, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		dialect: dialect,
		gen:     generator.New(dialect),
		opts:    opts,
		logger:  logger,
	}
}

// session is one Execute call: a single connection and the dialect state bound to it
type session struct {
	db database.Querier
	s  *database.Session
	st status.Status
}

// Execute applies set in three phases: add, update, delete. Each item that
// succeeds has its Sync flag cleared. A failed item is reported through
// st.LogMessage unless st.FailOnError is set, in which case the error is returned
// and the remaining items are not processed.
func (w *Writer) Execute(ctx context.Context, set *changeset.Set, st status.Status) error {
	db, err := w.dialect.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer db.Close()

	s, err := w.dialect.Initialize(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to initialize %s session: %w", w.dialect.Name(), err)
	}

	sess := &session{db: db, s: s, st: st}
	w.logger.Info("applying change set",
		"provider", w.dialect.Name(),
		"add", len(set.Add),
		"update", len(set.Update),
		"delete", len(set.Delete),
		"execute", !w.opts.DoNotExecute,
	)

	if w.opts.BatchAdd {
		err = w.addTables(ctx, sess, set.Add)
	} else {
		err = w.add(ctx, sess, set.Add)
	}
	if err != nil {
		return err
	}
	if err := w.update(ctx, sess, set.Update); err != nil {
		return err
	}
	return w.delete(ctx, sess, set.Delete)
}

func (w *Writer) add(ctx context.Context, sess *session, items []*changeset.Item) error {
	total := len(items)
	for i, item := range items {
		if !sess.st.ContinueProcessing() {
			w.logger.Info("add phase stopped", "remaining", total-i)
			return nil
		}

		if item.Sync {
			stmt, err := w.gen.Add(sess.s, item)
			if err == nil {
				err = w.run(ctx, sess, stmt)
			}
			if err := w.settle(sess, item, "add", err); err != nil {
				sess.st.Progress(total, i+1)
				return err
			}
		}
		sess.st.Progress(total, i+1)
	}
	return nil
}

// addTables is the batched add phase: one create-table-objects statement per table
func (w *Writer) addTables(ctx context.Context, sess *session, items []*changeset.Item) error {
	batches, failures := generator.GroupCreates(items, database.TableKeyFunc(w.dialect.Name()))
	return w.applyBatches(ctx, sess, "add", batches, failures, w.gen.CreateTableObjects)
}

func (w *Writer) update(ctx context.Context, sess *session, items []*changeset.Item) error {
	total := len(items)
	for i, item := range items {
		if !sess.st.ContinueProcessing() {
			w.logger.Info("update phase stopped", "remaining", total-i)
			return nil
		}

		if item.Sync {
			statements, err := w.gen.Update(sess.s, item)
			for j := 0; err == nil && j < len(statements); j++ {
				err = w.run(ctx, sess, statements[j])
			}
			if err := w.settle(sess, item, "update", err); err != nil {
				sess.st.Progress(total, i+1)
				return err
			}
		}
		sess.st.Progress(total, i+1)
	}
	return nil
}

// delete groups items by table so whole-table removals become one DROP TABLE
func (w *Writer) delete(ctx context.Context, sess *session, items []*changeset.Item) error {
	batches, failures := generator.GroupDeletes(items, database.TableKeyFunc(w.dialect.Name()))
	return w.applyBatches(ctx, sess, "delete", batches, failures, w.gen.DeleteTableObjects)
}

// applyBatches settles the items that could not be grouped, then renders and
// runs one statement per table. Each failure and each batch is one step.
func (w *Writer) applyBatches(
	ctx context.Context,
	sess *session,
	phase string,
	batches []*generator.Batch,
	failures []generator.Failure,
	render func(context.Context, *database.Session, *generator.Batch) (string, error),
) error {
	total := len(failures) + len(batches)
	for i := 0; i < total; i++ {
		if !sess.st.ContinueProcessing() {
			w.logger.Info(phase+" phase stopped", "remaining", total-i)
			return nil
		}

		var err error
		if i < len(failures) {
			f := failures[i]
			err = w.fail(sess, fmt.Sprintf("%s %s", phase, f.Item), f.Err)
		} else {
			b := batches[i-len(failures)]
			stmt, rerr := render(ctx, sess.s, b)
			if rerr == nil {
				rerr = w.run(ctx, sess, stmt)
			}
			err = w.settleBatch(sess, b, phase, rerr)
		}

		sess.st.Progress(total, i+1)
		if err != nil {
			return err
		}
	}
	return nil
}

// run traces and executes one rendered statement
func (w *Writer) run(ctx context.Context, sess *session, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if w.opts.OutputSQLTrace {
		sess.st.Message(stmt)
	}
	if w.opts.DoNotExecute {
		return nil
	}
	if _, err := sess.db.ExecContext(ctx, stmt); err != nil {
		return err
	}
	return nil
}

// settle clears Sync on success and applies the failure policy otherwise.
// It returns an error only when the batch must stop.
func (w *Writer) settle(sess *session, item *changeset.Item, phase string, err error) error {
	if err == nil {
		item.Sync = false
		return nil
	}
	return w.fail(sess, fmt.Sprintf("%s %s", phase, item), err)
}

func (w *Writer) settleBatch(sess *session, b *generator.Batch, phase string, err error) error {
	if err == nil {
		for _, item := range b.Items {
			item.Sync = false
		}
		return nil
	}
	return w.fail(sess, fmt.Sprintf("%s objects of %s", phase, b.Table.Key()), err)
}

func (w *Writer) fail(sess *session, what string, err error) error {
	if sess.st.FailOnError() {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	w.logger.Warn("skipping failed item", "item", what, "error", err)
	sess.st.LogMessage(fmt.Sprintf("failed to %s: %v", what, err))
	return nil
}
