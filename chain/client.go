package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"github.com/cryptolib/cryptolib/conf"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	log "github.com/sirupsen/logrus"
	"math/big"
	"os"
	"strings"
	"time"
)

// Backend is the subset of ethclient.Client the library contract needs.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

type Client struct {
	conn     *ethclient.Client
	backend  Backend
	abi      abi.ABI
	contract common.Address
	wallet   common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	gasLimit uint64
	gasPrice *big.Int
	timeout  time.Duration
}

// LoadABI parses the contract interface description at path.
func LoadABI(path string) (abi.ABI, error) {
	f, err := os.Open(path)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  path,
			"error": err,
		}).Error("Open contract abi failed")
		return abi.ABI{}, err
	}
	defer f.Close()

	parsed, err := abi.JSON(f)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  path,
			"error": err,
		}).Error("Parse contract abi failed")
		return abi.ABI{}, err
	}
	return parsed, nil
}

// NewClient dials conf.Node and binds the library contract described by conf.AbiFile.
func NewClient(conf *conf.Conf) (*Client, error) {
	parsed, err := LoadABI(conf.AbiFile)
	if err != nil {
		return nil, err
	}

	conn, err := ethclient.Dial(conf.Node)
	if err != nil {
		log.WithFields(log.Fields{
			"node":  conf.Node,
			"error": err,
		}).Error("Connect to node failed")
		return nil, err
	}

	client, err := New(conn, parsed, conf)
	if err != nil {
		conn.Close()
		return nil, err
	}
	client.conn = conn
	return client, nil
}

// New binds a contract on an existing backend.
func New(backend Backend, contractABI abi.ABI, conf *conf.Conf) (*Client, error) {
	if !common.IsHexAddress(conf.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", conf.ContractAddress)
	}

	c := &Client{
		backend:  backend,
		abi:      contractABI,
		contract: common.HexToAddress(conf.ContractAddress),
		chainID:  big.NewInt(conf.ChainId),
		gasLimit: conf.GasLimit,
		gasPrice: new(big.Int).Mul(big.NewInt(conf.GasPriceGwei), big.NewInt(params.GWei)),
		timeout:  conf.CallTimeout,
	}

	if conf.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(conf.PrivateKey, "0x"))
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Parse private key failed")
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		c.key = key
		c.wallet = crypto.PubkeyToAddress(key.PublicKey)
	}

	if conf.WalletAddress != "" {
		if !common.IsHexAddress(conf.WalletAddress) {
			return nil, fmt.Errorf("invalid wallet address %q", conf.WalletAddress)
		}
		c.wallet = common.HexToAddress(conf.WalletAddress)
	}

	if c.wallet == (common.Address{}) {
		return nil, errors.New("no wallet address or private key configured")
	}

	return c, nil
}

func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) Wallet() common.Address {
	return c.wallet
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
