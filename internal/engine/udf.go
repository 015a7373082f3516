package engine

import (
	"database/sql/driver"
	"sync"

	"modernc.org/sqlite"
)

// UDFs register process-wide with the driver, so registration is deduped
// here; re-registering the same name is a no-op rather than an error.
var (
	udfMu         sync.Mutex
	udfRegistered = make(map[string]bool)
)

// UDF is a user-supplied scalar function callable from lesson SQL.
type UDF func(args []driver.Value) (driver.Value, error)

// RegisterUDF registers a deterministic scalar function.
func RegisterUDF(name string, nArgs int, fn UDF) error {
	udfMu.Lock()
	defer udfMu.Unlock()
	if udfRegistered[name] {
		return nil
	}
	err := sqlite.RegisterDeterministicScalarFunction(name, int32(nArgs),
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return fn(args)
		})
	if err != nil {
		return err
	}
	udfRegistered[name] = true
	return nil
}

// RegisterVolatileUDF registers a scalar function whose result may change
// between invocations, such as one that consults a network service.
func RegisterVolatileUDF(name string, nArgs int, fn UDF) error {
	udfMu.Lock()
	defer udfMu.Unlock()
	if udfRegistered[name] {
		return nil
	}
	err := sqlite.RegisterScalarFunction(name, int32(nArgs),
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return fn(args)
		})
	if err != nil {
		return err
	}
	udfRegistered[name] = true
	return nil
}
