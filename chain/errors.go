package chain

import (
	"errors"
	"fmt"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrNoPrivateKey     = errors.New("no private key configured")
	ErrUnexpectedOutput = errors.New("contract output does not match the library model")
)

type ErrorKind int

const (
	// KindNetwork covers transport failures and timeouts: the node never answered.
	KindNetwork ErrorKind = iota
	// KindRejected means the node answered with a JSON-RPC error (revert, bad nonce, ...).
	KindRejected
)

func (k ErrorKind) String() string {
	if k == KindRejected {
		return "rejected"
	}
	return "network"
}

type CallError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

func wrapCall(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := KindNetwork
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		kind = KindRejected
	}
	return &CallError{Op: op, Kind: kind, Err: err}
}
