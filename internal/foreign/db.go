// Package foreign holds native modules exposed to deferred expressions
// beyond the core combinators. Each module is a registry of Function values
// the embedder can splice into expressions it builds.
package foreign

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"kestrel/internal/value"
	"kestrel/internal/vm"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DbModule exposes relational database access: connections and transactions
// are held as integer handles so they can travel through expressions as
// plain values. Handles are owned by the module instance, not by a process
// global, so independent embedders don't see each other's connections.
type DbModule struct {
	mu     sync.Mutex
	nextID int64
	conns  map[int64]*sql.DB
	txs    map[int64]*sql.Tx
}

func NewDbModule() *DbModule {
	return &DbModule{
		conns: map[int64]*sql.DB{},
		txs:   map[int64]*sql.Tx{},
	}
}

// Functions returns the module's registry, keyed by script-level name.
func (d *DbModule) Functions() map[string]*value.Function {
	return map[string]*value.Function{
		"db.connect":  {Name: "db.connect", Signature: "S,S", Fn: d.connect},
		"db.query":    {Name: "db.query", Signature: "N,S,...", Fn: d.query},
		"db.exec":     {Name: "db.exec", Signature: "N,S,...", Fn: d.exec},
		"db.begin":    {Name: "db.begin", Signature: "N", Fn: d.begin},
		"db.commit":   {Name: "db.commit", Signature: "N", Fn: d.commit},
		"db.rollback": {Name: "db.rollback", Signature: "N", Fn: d.rollback},
		"db.close":    {Name: "db.close", Signature: "N", Fn: d.close},
	}
}

// Close releases every open transaction and connection.
func (d *DbModule) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, tx := range d.txs {
		tx.Rollback()
		delete(d.txs, id)
	}
	for id, db := range d.conns {
		db.Close()
		delete(d.conns, id)
	}
}

func (d *DbModule) connect(m value.Machine) {
	driver, okD := unpackString(m, 0)
	connStr, okC := unpackString(m, 1)
	if !okD || !okC {
		m.RaiseParamError("S,S")
		return
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		m.RaiseError(vm.ErrForeign, "failed to open connection: %v", err)
		return
	}
	if err := db.Ping(); err != nil {
		db.Close()
		m.RaiseError(vm.ErrForeign, "failed to ping database: %v", err)
		return
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.conns[id] = db
	d.mu.Unlock()

	m.Retval(value.Int(id))
}

func (d *DbModule) query(m value.Machine) {
	id, okID := unpackHandle(m, 0)
	query, okQ := unpackString(m, 1)
	if !okID || !okQ {
		m.RaiseParamError("N,S,...")
		return
	}

	d.mu.Lock()
	db, okConn := d.conns[id]
	tx, inTx := d.txs[id]
	d.mu.Unlock()
	if !okConn {
		m.RaiseError(vm.ErrForeign, "invalid connection handle %d", id)
		return
	}

	params := make([]any, 0, m.ParamCount()-2)
	for i := 2; i < m.ParamCount(); i++ {
		params = append(params, driverValue(*m.Param(i)))
	}

	var rows *sql.Rows
	var err error
	if inTx {
		rows, err = tx.Query(query, params...)
	} else {
		rows, err = db.Query(query, params...)
	}
	if err != nil {
		m.RaiseError(vm.ErrForeign, "query failed: %v", err)
		return
	}
	defer rows.Close()

	m.Retval(renderRows(rows))
}

func (d *DbModule) exec(m value.Machine) {
	id, okID := unpackHandle(m, 0)
	query, okQ := unpackString(m, 1)
	if !okID || !okQ {
		m.RaiseParamError("N,S,...")
		return
	}

	d.mu.Lock()
	db, okConn := d.conns[id]
	tx, inTx := d.txs[id]
	d.mu.Unlock()
	if !okConn {
		m.RaiseError(vm.ErrForeign, "invalid connection handle %d", id)
		return
	}

	params := make([]any, 0, m.ParamCount()-2)
	for i := 2; i < m.ParamCount(); i++ {
		params = append(params, driverValue(*m.Param(i)))
	}

	var result sql.Result
	var err error
	if inTx {
		result, err = tx.Exec(query, params...)
	} else {
		result, err = db.Exec(query, params...)
	}
	if err != nil {
		m.RaiseError(vm.ErrForeign, "exec failed: %v", err)
		return
	}

	affected, _ := result.RowsAffected()
	lastID, _ := result.LastInsertId()

	out := value.NewDict()
	out.Put(value.String("rowsAffected"), value.Int(affected))
	out.Put(value.String("lastInsertId"), value.Int(lastID))
	m.Retval(value.FromDict(out))
}

func (d *DbModule) begin(m value.Machine) {
	id, ok := unpackHandle(m, 0)
	if !ok {
		m.RaiseParamError("N")
		return
	}

	d.mu.Lock()
	db, okConn := d.conns[id]
	d.mu.Unlock()
	if !okConn {
		m.RaiseError(vm.ErrForeign, "invalid connection handle %d", id)
		return
	}

	tx, err := db.Begin()
	if err != nil {
		m.RaiseError(vm.ErrForeign, "failed to begin transaction: %v", err)
		return
	}

	d.mu.Lock()
	d.txs[id] = tx
	d.mu.Unlock()

	m.Retval(value.Int(id))
}

func (d *DbModule) commit(m value.Machine) {
	id, ok := unpackHandle(m, 0)
	if !ok {
		m.RaiseParamError("N")
		return
	}

	d.mu.Lock()
	tx, okTx := d.txs[id]
	delete(d.txs, id)
	d.mu.Unlock()
	if !okTx {
		m.RaiseError(vm.ErrForeign, "invalid transaction handle %d", id)
		return
	}

	if err := tx.Commit(); err != nil {
		m.RaiseError(vm.ErrForeign, "failed to commit transaction: %v", err)
		return
	}
	m.Retval(value.Int(id))
}

func (d *DbModule) rollback(m value.Machine) {
	id, ok := unpackHandle(m, 0)
	if !ok {
		m.RaiseParamError("N")
		return
	}

	d.mu.Lock()
	tx, okTx := d.txs[id]
	delete(d.txs, id)
	d.mu.Unlock()
	if !okTx {
		m.RaiseError(vm.ErrForeign, "invalid transaction handle %d", id)
		return
	}

	if err := tx.Rollback(); err != nil {
		m.RaiseError(vm.ErrForeign, "failed to rollback transaction: %v", err)
		return
	}
	m.Retval(value.Int(id))
}

func (d *DbModule) close(m value.Machine) {
	id, ok := unpackHandle(m, 0)
	if !ok {
		m.RaiseParamError("N")
		return
	}

	d.mu.Lock()
	if tx, okTx := d.txs[id]; okTx {
		tx.Rollback()
		delete(d.txs, id)
	}
	if db, okConn := d.conns[id]; okConn {
		db.Close()
		delete(d.conns, id)
	}
	d.mu.Unlock()

	m.RetNil()
}

// renderRows converts a result set into a sequence of row dictionaries,
// keyed by column name.
func renderRows(rows *sql.Rows) value.Value {
	columns, _ := rows.Columns()
	types, _ := rows.ColumnTypes()

	out := value.NewSequence()
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		rows.Scan(pointers...)

		row := value.NewDict()
		for i, col := range columns {
			var typeName string
			if i < len(types) {
				typeName = types[i].DatabaseTypeName()
			}
			row.Put(value.String(col), mapColumn(values[i], typeName))
		}
		out.Append(value.FromDict(row))
	}
	return value.FromSeq(out)
}

func mapColumn(v any, dbType string) value.Value {
	if v == nil {
		return value.Nil()
	}
	switch x := v.(type) {
	case int64:
		return value.Int(x)
	case float64:
		return value.Float(x)
	case []byte:
		// drivers hand text columns back as []byte more often than not
		return value.String(string(x))
	case string:
		return value.String(x)
	case bool:
		return value.Bool(x)
	case time.Time:
		return value.String(x.Format(time.RFC3339))
	default:
		return value.String(fmt.Sprintf("%v", v))
	}
}
