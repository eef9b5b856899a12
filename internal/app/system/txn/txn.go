// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a MongoDB transaction on db's client.
//
// On deployments that cannot run transactions (a standalone mongod, some
// emulators) fn runs once without one. In that mode, undo steps that fn
// registers with Compensate run in reverse order when fn fails, so a
// multi-collection write is rolled back by hand. Inside a real transaction
// Compensate is a no-op and the server aborts the writes.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runWithoutTxn(ctx, log, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Warn("transactions not supported; running without transaction", zap.Error(err))
		}
		return runWithoutTxn(ctx, log, fn)
	}
	return err
}

type undoKey struct{}

type undoLog struct {
	mu    sync.Mutex
	steps []func(context.Context) error
}

// Compensate registers an undo step for the non-transactional fallback.
// Call it right after each write succeeds.
func Compensate(ctx context.Context, undo func(ctx context.Context) error) {
	ul, ok := ctx.Value(undoKey{}).(*undoLog)
	if !ok {
		return
	}
	ul.mu.Lock()
	ul.steps = append(ul.steps, undo)
	ul.mu.Unlock()
}

func runWithoutTxn(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error) error {
	ul := &undoLog{}
	err := fn(context.WithValue(ctx, undoKey{}, ul))
	if err == nil {
		return nil
	}

	// Undo must run even if the request context is already canceled.
	undoCtx := context.WithoutCancel(ctx)
	ul.mu.Lock()
	steps := ul.steps
	ul.mu.Unlock()
	for i := len(steps) - 1; i >= 0; i-- {
		if uerr := steps[i](undoCtx); uerr != nil && log != nil {
			log.Error("compensating write failed", zap.Int("step", i), zap.Error(uerr))
		}
	}
	return err
}

// IsNotSupported reports whether err means the server cannot run
// transactions or sessions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation: transactions on a standalone
			51,  // legacy "not a replica set"
			263: // OperationNotSupportedInTransaction
			return true
		}
	}

	// Drivers and proxies word this differently; require two signals.
	s := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(s, kw) {
			hits++
		}
	}
	return hits >= 2
}
