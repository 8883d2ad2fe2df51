package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
)

const weiDecimals = 18

// OnChainProject mirrors the tuple returned by getProject
type OnChainProject struct {
	Id             *big.Int
	Owner          common.Address
	Name           string
	Description    string
	TargetAmount   *big.Int
	RaisedAmount   *big.Int
	ExpectedReturn *big.Int
	Duration       *big.Int
	Status         uint8
	InvestorCount  *big.Int
}

// Client submits investments to the RetroFit contract and reads its project state
type Client struct {
	contract *bind.BoundContract
	address  common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	closer   func()
}

// Dial connects to an RPC endpoint and binds the contract.
// When chainID is zero it is read from the node.
func Dial(ctx context.Context, rpcURL, contractAddress, privateKeyHex string, chainID int64) (*Client, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddress)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	id := big.NewInt(chainID)
	if chainID == 0 {
		id, err = eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("failed to get chain id: %w", err)
		}
	}

	c, err := NewClient(eth, common.HexToAddress(contractAddress), key, id)
	if err != nil {
		eth.Close()
		return nil, err
	}
	c.closer = eth.Close
	return c, nil
}

// NewClient binds the contract over an existing backend
func NewClient(backend bind.ContractBackend, address common.Address, key *ecdsa.PrivateKey, chainID *big.Int) (*Client, error) {
	if key == nil {
		return nil, errors.New("private key is required")
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("chain id must be positive")
	}

	parsed, err := abi.JSON(strings.NewReader(RetroFitABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &Client{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		address:  address,
		key:      key,
		chainID:  chainID,
	}, nil
}

// Close releases the RPC connection when the client owns one
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Address returns the bound contract address
func (c *Client) Address() common.Address {
	return c.address
}

// Sender returns the account that signs investments
func (c *Client) Sender() common.Address {
	return crypto.PubkeyToAddress(c.key.PublicKey)
}

// Invest calls invest(projectId) with amount ether attached and returns the transaction hash.
// It does not wait for the transaction to be mined.
func (c *Client) Invest(ctx context.Context, projectID int, amount decimal.Decimal) (string, error) {
	if projectID <= 0 {
		return "", fmt.Errorf("project %d: %w", projectID, domain.ErrProjectNotFound)
	}
	wei, err := EtherToWei(amount)
	if err != nil {
		return "", err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return "", fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	opts.Value = wei

	tx, err := c.contract.Transact(opts, "invest", big.NewInt(int64(projectID)))
	if err != nil {
		return "", fmt.Errorf("failed to submit investment: %w", err)
	}
	return tx.Hash().Hex(), nil
}

// ValidateInvestor normalizes an investor wallet address
func (c *Client) ValidateInvestor(investor string) (string, error) {
	return ParseInvestor(investor)
}

// ProjectOnChain reads a project from the contract
func (c *Client) ProjectOnChain(ctx context.Context, projectID int) (*OnChainProject, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getProject", big.NewInt(int64(projectID)))
	if err != nil {
		return nil, fmt.Errorf("failed to read project %d: %w", projectID, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("failed to read project %d: unexpected output length %d", projectID, len(out))
	}

	project, ok := abi.ConvertType(out[0], new(OnChainProject)).(*OnChainProject)
	if !ok {
		return nil, fmt.Errorf("failed to read project %d: unexpected output type %T", projectID, out[0])
	}
	return project, nil
}

// RaisedOnChain returns the ether raised for a project according to the contract.
// A project the contract has never created reports id 0 and yields domain.ErrProjectNotFound.
func (c *Client) RaisedOnChain(ctx context.Context, projectID int) (decimal.Decimal, error) {
	project, err := c.ProjectOnChain(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	if project.Id == nil || project.Id.Sign() == 0 {
		return decimal.Zero, fmt.Errorf("project %d on chain: %w", projectID, domain.ErrProjectNotFound)
	}
	return WeiToEther(project.RaisedAmount), nil
}

// ParseInvestor validates a hex wallet address and returns its checksummed form
func ParseInvestor(investor string) (string, error) {
	investor = strings.TrimSpace(investor)
	if !common.IsHexAddress(investor) {
		return "", fmt.Errorf("%q is not a wallet address: %w", investor, domain.ErrInvalidInvestor)
	}
	return common.HexToAddress(investor).Hex(), nil
}

// EtherToWei converts a positive ether amount with at most 18 decimals to wei
func EtherToWei(amount decimal.Decimal) (*big.Int, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrInvalidAmount)
	}
	wei := amount.Shift(weiDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimals: %w", amount, weiDecimals, domain.ErrInvalidAmount)
	}
	return wei.BigInt(), nil
}

// WeiToEther converts a wei amount to ether
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -weiDecimals)
}
