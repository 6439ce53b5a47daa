package chain

import (
	"context"
	"fmt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"
	"math/big"
)

// PendingTransaction is a contract invocation that has been built but not
// yet signed. It is used once and discarded.
type PendingTransaction struct {
	Method   string
	Args     []interface{}
	To       common.Address
	Data     []byte
	ChainID  *big.Int
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
}

func (p *PendingTransaction) Transaction() *types.Transaction {
	to := p.To
	return types.NewTx(&types.LegacyTx{
		Nonce:    p.Nonce,
		GasPrice: p.GasPrice,
		Gas:      p.GasLimit,
		To:       &to,
		Value:    new(big.Int),
		Data:     p.Data,
	})
}

// BuildTransaction packs method(args) for the library contract and stamps it
// with the wallet's current transaction count and the configured gas settings.
func (c *Client) BuildTransaction(ctx context.Context, method string, args ...interface{}) (*PendingTransaction, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	nonce, err := c.backend.NonceAt(ctx, c.wallet, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"wallet": c.wallet.Hex(),
			"error":  err,
		}).Warn("Get transaction count failed")
		return nil, wrapCall("getTransactionCount", err)
	}

	return &PendingTransaction{
		Method:   method,
		Args:     args,
		To:       c.contract,
		Data:     data,
		ChainID:  new(big.Int).Set(c.chainID),
		GasLimit: c.gasLimit,
		GasPrice: new(big.Int).Set(c.gasPrice),
		Nonce:    nonce,
	}, nil
}

func (c *Client) Sign(p *PendingTransaction) (*types.Transaction, error) {
	if c.key == nil {
		return nil, ErrNoPrivateKey
	}
	signed, err := types.SignTx(p.Transaction(), types.NewEIP155Signer(p.ChainID), c.key)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", p.Method, err)
	}
	return signed, nil
}

// SignAndSubmit signs p and sends the raw transaction once, returning its hash.
func (c *Client) SignAndSubmit(ctx context.Context, p *PendingTransaction) (common.Hash, error) {
	signed, err := c.Sign(p)
	if err != nil {
		return common.Hash{}, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		log.WithFields(log.Fields{
			"method": p.Method,
			"nonce":  p.Nonce,
			"error":  err,
		}).Warn("Send transaction failed")
		return common.Hash{}, wrapCall(p.Method, err)
	}

	log.WithFields(log.Fields{
		"method": p.Method,
		"nonce":  p.Nonce,
		"hash":   signed.Hash().Hex(),
	}).Info("Transaction submitted")
	return signed.Hash(), nil
}
