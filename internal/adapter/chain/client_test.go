package chain

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
)

var simulatedChainID = big.NewInt(1337)

func TestRetroFitABI(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(RetroFitABI))
	require.NoError(t, err)

	assert.Contains(t, parsed.Methods, "invest")
	assert.Contains(t, parsed.Methods, "getProject")
	assert.Contains(t, parsed.Methods, "projectCounter")
	assert.Contains(t, parsed.Events, "InvestmentMade")
	assert.True(t, parsed.Methods["invest"].IsPayable())

	data, err := parsed.Pack("invest", big.NewInt(1))
	require.NoError(t, err)
	assert.Len(t, data, 4+32)
}

func TestEtherToWei(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr bool
	}{
		{name: "Whole ether", amount: "1", want: "1000000000000000000"},
		{name: "Fractional ether", amount: "0.01", want: "10000000000000000"},
		{name: "One wei", amount: "0.000000000000000001", want: "1"},
		{name: "Too many decimals", amount: "0.0000000000000000001", wantErr: true},
		{name: "Zero", amount: "0", wantErr: true},
		{name: "Negative", amount: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, err := EtherToWei(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, wei.String())
			assert.True(t, WeiToEther(wei).Equal(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestWeiToEther_Nil(t *testing.T) {
	assert.True(t, WeiToEther(nil).IsZero())
}

func TestParseInvestor(t *testing.T) {
	got, err := ParseInvestor("  0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed ")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)

	for _, investor := range []string{"", "0xabc", "not-an-address"} {
		_, err := ParseInvestor(investor)
		assert.ErrorIs(t, err, domain.ErrInvalidInvestor, investor)
	}
}

func TestNewClient_Validation(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = NewClient(nil, common.Address{}, nil, simulatedChainID)
	assert.EqualError(t, err, "private key is required")

	_, err = NewClient(nil, common.Address{}, key, big.NewInt(0))
	assert.EqualError(t, err, "chain id must be positive")
}

func TestDial_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := Dial(ctx, "http://127.0.0.1:8545", "0x123", "", 1)
	assert.ErrorContains(t, err, "invalid contract address")

	_, err = Dial(ctx, "http://127.0.0.1:8545", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "zz", 1)
	assert.ErrorContains(t, err, "failed to parse private key")
}

func setupSimulated(t *testing.T) (*Client, *simulated.Backend, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := crypto.PubkeyToAddress(key.PublicKey)

	backend := simulated.NewBackend(types.GenesisAlloc{
		sender: {Balance: new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))},
	})
	t.Cleanup(func() {
		_ = backend.Close()
	})

	// No code is deployed at the contract address, so invest is a plain value transfer
	contract := common.HexToAddress("0xDc64a140Aa3E981100a9becA4E685f962f0cF6C9")
	client, err := NewClient(backend.Client(), contract, key, simulatedChainID)
	require.NoError(t, err)
	return client, backend, contract
}

func TestInvest_SubmitsValueTransaction(t *testing.T) {
	ctx := context.Background()
	client, backend, contract := setupSimulated(t)

	hash, err := client.Invest(ctx, 1, decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "0x"))
	backend.Commit()

	receipt, err := backend.Client().TransactionReceipt(ctx, common.HexToHash(hash))
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	balance, err := backend.Client().BalanceAt(ctx, contract, nil)
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000", balance.String())

	tx, _, err := backend.Client().TransactionByHash(ctx, common.HexToHash(hash))
	require.NoError(t, err)
	parsed, err := abi.JSON(strings.NewReader(RetroFitABI))
	require.NoError(t, err)
	want, err := parsed.Pack("invest", big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
}

func TestInvest_Validation(t *testing.T) {
	ctx := context.Background()
	client, _, _ := setupSimulated(t)

	_, err := client.Invest(ctx, 0, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = client.Invest(ctx, 1, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestProjectOnChain_NoContractCode(t *testing.T) {
	client, _, _ := setupSimulated(t)

	project, err := client.ProjectOnChain(context.Background(), 1)

	assert.Nil(t, project)
	assert.ErrorContains(t, err, "failed to read project 1")
}

func TestRaisedOnChain_NoContractCode(t *testing.T) {
	client, _, _ := setupSimulated(t)

	raised, err := client.RaisedOnChain(context.Background(), 1)

	assert.True(t, raised.IsZero())
	assert.ErrorContains(t, err, "failed to read project 1")
	assert.NotErrorIs(t, err, domain.ErrProjectNotFound)
}
