package memory

import "context"

// TxRunner satisfies storage.TxRunner for the in-memory stores. Each store
// method is already atomic under its own mutex, so fn runs directly; this
// exists so services can be wired identically against memory and PostgreSQL.
type TxRunner struct{}

func NewTxRunner() *TxRunner { return &TxRunner{} }

func (TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
