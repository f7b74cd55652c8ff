package router

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ritamzico/gqlgraph/internal/catalog"
	"github.com/ritamzico/gqlgraph/internal/session"
	"github.com/ritamzico/gqlgraph/internal/storage"
	"github.com/ritamzico/gqlgraph/internal/txn"
)

func newTestRouter(t *testing.T) (*Router, *session.Session) {
	t.Helper()
	log := logrus.NewEntry(logrus.New())
	store := storage.NewMemFacade()
	cat := catalog.NewMemCatalog()
	coord := txn.NewCoordinator(log)
	_, err := store.CreateGraph("default")
	require.NoError(t, err)
	cat.RegisterGraph("default", "default")

	r := New(store, cat, coord, log)
	sess := &session.Session{ID: "s1", CurrentGraph: "default", CurrentSchema: "default"}
	return r, sess
}

func TestInsertThenMatchReturnsRow(t *testing.T) {
	r, sess := newTestRouter(t)

	_, err := r.Execute(sess, `INSERT (:Person {name: 'Ada', age: 30})`)
	require.NoError(t, err)

	res, err := r.Execute(sess, `MATCH (n:Person) RETURN n.name AS name`)
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, res.Columns)
	require.Len(t, res.Rows, 1)
	v, ok := res.Rows[0].Get("name")
	require.True(t, ok)
	require.Equal(t, "Ada", v.Str)
}

func TestInsertEdgeThenMatchPattern(t *testing.T) {
	r, sess := newTestRouter(t)

	_, err := r.Execute(sess, `INSERT (:Person {name: 'Ada'})`)
	require.NoError(t, err)
	_, err = r.Execute(sess, `INSERT (:Person {name: 'Grace'})`)
	require.NoError(t, err)
	_, err = r.Execute(sess,
		`MATCH (a:Person {name: 'Ada'}), (b:Person {name: 'Grace'}) INSERT (a)-[:KNOWS]->(b)`)
	require.NoError(t, err)

	res, err := r.Execute(sess, `MATCH (a:Person)-[:KNOWS]->(b:Person) RETURN a.name AS a, b.name AS b`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	av, _ := res.Rows[0].Get("a")
	bv, _ := res.Rows[0].Get("b")
	require.Equal(t, "Ada", av.Str)
	require.Equal(t, "Grace", bv.Str)
}

func TestSetAndRemoveProperty(t *testing.T) {
	r, sess := newTestRouter(t)

	_, err := r.Execute(sess, `INSERT (:Person {name: 'Ada', age: 30})`)
	require.NoError(t, err)
	_, err = r.Execute(sess, `MATCH (n:Person {name: 'Ada'}) SET n.age = 31`)
	require.NoError(t, err)

	res, err := r.Execute(sess, `MATCH (n:Person {name: 'Ada'}) RETURN n.age AS age`)
	require.NoError(t, err)
	v, _ := res.Rows[0].Get("age")
	require.Equal(t, 31.0, v.Number)

	_, err = r.Execute(sess, `MATCH (n:Person {name: 'Ada'}) REMOVE n.age`)
	require.NoError(t, err)
	res, err = r.Execute(sess, `MATCH (n:Person {name: 'Ada'}) RETURN n.age AS age`)
	require.NoError(t, err)
	v, ok := res.Rows[0].Get("age")
	require.True(t, ok)
	require.True(t, v.IsNull())
}

func TestDeleteNode(t *testing.T) {
	r, sess := newTestRouter(t)

	_, err := r.Execute(sess, `INSERT (:Person {name: 'Ada'})`)
	require.NoError(t, err)
	_, err = r.Execute(sess, `MATCH (n:Person {name: 'Ada'}) DELETE n`)
	require.NoError(t, err)

	res, err := r.Execute(sess, `MATCH (n:Person) RETURN n.name AS name`)
	require.NoError(t, err)
	require.Empty(t, res.Rows)
}

func TestTransactionCommitPersistsChanges(t *testing.T) {
	r, sess := newTestRouter(t)

	_, err := r.Execute(sess, `START TRANSACTION`)
	require.NoError(t, err)
	require.NotEmpty(t, sess.CurrentTxn)

	_, err = r.Execute(sess, `INSERT (:Person {name: 'Ada'})`)
	require.NoError(t, err)

	_, err = r.Execute(sess, `COMMIT`)
	require.NoError(t, err)
	require.Empty(t, sess.CurrentTxn)

	res, err := r.Execute(sess, `MATCH (n:Person) RETURN n.name AS name`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

func TestTransactionRollbackDiscardsChanges(t *testing.T) {
	r, sess := newTestRouter(t)

	_, err := r.Execute(sess, `START TRANSACTION`)
	require.NoError(t, err)

	_, err = r.Execute(sess, `INSERT (:Person {name: 'Ada'})`)
	require.NoError(t, err)

	_, err = r.Execute(sess, `ROLLBACK`)
	require.NoError(t, err)
	require.Empty(t, sess.CurrentTxn)

	res, err := r.Execute(sess, `MATCH (n:Person) RETURN n.name AS name`)
	require.NoError(t, err)
	require.Empty(t, res.Rows)
}

func TestCommitWithNoActiveTransactionErrors(t *testing.T) {
	r, sess := newTestRouter(t)
	_, err := r.Execute(sess, `COMMIT`)
	require.Error(t, err)
}

func TestSessionSetGraphSwitchesCurrentGraph(t *testing.T) {
	r, sess := newTestRouter(t)
	_, err := r.Storage.CreateGraph("other")
	require.NoError(t, err)

	_, err = r.Execute(sess, `SESSION SET GRAPH other`)
	require.NoError(t, err)
	require.Equal(t, "other", sess.CurrentGraph)
}

func TestCallSystemProcedureNodeCount(t *testing.T) {
	r, sess := newTestRouter(t)
	_, err := r.Execute(sess, `INSERT (:Person {name: 'Ada'})`)
	require.NoError(t, err)
	_, err = r.Execute(sess, `INSERT (:Person {name: 'Grace'})`)
	require.NoError(t, err)

	res, err := r.Execute(sess, `CALL db.nodeCount()`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

func TestQueryOnMissingGraphErrors(t *testing.T) {
	r, sess := newTestRouter(t)
	sess.CurrentGraph = "nonexistent"
	_, err := r.Execute(sess, `MATCH (n) RETURN n`)
	require.Error(t, err)
}

func TestUnparsableStatementErrors(t *testing.T) {
	r, sess := newTestRouter(t)
	_, err := r.Execute(sess, `THIS IS NOT GQL ###`)
	require.Error(t, err)
}
