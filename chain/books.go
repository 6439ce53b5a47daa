package chain

import (
	"context"
	"fmt"
	"github.com/cryptolib/cryptolib/models"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// call runs a read-only contract method against the latest block and
// returns its decoded outputs.
func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	msg := ethereum.CallMsg{From: c.wallet, To: &c.contract, Data: data}
	out, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"method": method,
			"error":  err,
		}).Warn("Contract call failed")
		return nil, wrapCall(method, err)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: no output", method)
	}
	return values, nil
}

// Books returns the full book collection, freshly read from the contract.
func (c *Client) Books(ctx context.Context) ([]models.Book, error) {
	out, err := c.call(ctx, "books")
	if err != nil {
		return nil, err
	}
	return decodeBooks("books", out[0])
}

func (c *Client) CheckedOutBooks(ctx context.Context, member common.Address) ([]models.Book, error) {
	out, err := c.call(ctx, "getCheckedOutBooks", member)
	if err != nil {
		return nil, err
	}
	return decodeBooks("getCheckedOutBooks", out[0])
}

func (c *Client) MemberByAddress(ctx context.Context, member common.Address) (*models.Member, error) {
	out, err := c.call(ctx, "memberByAddress", member)
	if err != nil {
		return nil, err
	}
	m := new(models.Member)
	if err := convert("memberByAddress", out[0], m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeBooks(method string, in interface{}) ([]models.Book, error) {
	books := new([]models.Book)
	if err := convert(method, in, books); err != nil {
		return nil, err
	}
	return *books, nil
}

// convert copies a decoded tuple into proto. abi.ConvertType panics when the
// ABI file's tuple layout differs from the model; that becomes ErrUnexpectedOutput.
func convert(method string, in interface{}, proto interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrUnexpectedOutput, method, r)
		}
	}()
	abi.ConvertType(in, proto)
	return nil
}
