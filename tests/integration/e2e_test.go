//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/greenretrofit/retrofit-backend/internal/adapter/grpc"
	"github.com/greenretrofit/retrofit-backend/internal/adapter/repository/postgres"
)

var (
	db         *postgres.DB
	grpcClient *grpcadapter.RetrofitServiceClient
	grpcConn   *grpc.ClientConn
)

// TestMain connects to the database and the gRPC server of a running stack
// started with STORE_DRIVER=postgres and the same API_TOKEN
func TestMain(m *testing.M) {
	ctx := context.Background()

	if os.Getenv("API_TOKEN") == "" {
		panic("API_TOKEN must match the token of the running server")
	}

	// 1. Connect to Database
	var err error
	db, err = postgres.NewDB(ctx, getDBConnectionString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	// 2. Connect to gRPC Server
	grpcConn, err = grpc.NewClient(getGRPCAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}

	grpcClient = grpcadapter.NewRetrofitServiceClient(grpcConn)

	// Run tests
	code := m.Run()

	_ = grpcConn.Close()
	_ = db.Close()
	os.Exit(code)
}

func getAuthContext() context.Context {
	token := os.Getenv("API_TOKEN")
	md := metadata.New(map[string]string{
		"authorization": "Bearer " + token,
	})
	return metadata.NewOutgoingContext(context.Background(), md)
}

// getDBConnectionString returns the database connection string from environment or defaults
func getDBConnectionString() string {
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	return "host=localhost port=5432 user=postgres password=postgres dbname=retrofit sslmode=disable"
}

// getGRPCAddress returns the gRPC server address from environment or defaults
func getGRPCAddress() string {
	addr := os.Getenv("GRPC_ADDRESS")
	if addr == "" {
		addr = "localhost:8080"
	}
	return addr
}

func getSnapshotKey() string {
	if key := os.Getenv("SNAPSHOT_KEY"); key != "" {
		return key
	}
	return "retrofit-projects"
}

func newRequest(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return req
}

func getProject(t *testing.T, ctx context.Context, id int) map[string]*structpb.Value {
	t.Helper()
	resp, err := grpcClient.GetProject(ctx, newRequest(t, map[string]any{"id": id}))
	require.NoError(t, err, "GetProject should succeed")
	return resp.GetFields()["project"].GetStructValue().GetFields()
}

func decimalField(t *testing.T, fields map[string]*structpb.Value, name string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(fields[name].GetStringValue())
	require.NoError(t, err, "%s should be a decimal string", name)
	return d
}

// TestInvestmentFlow records an investment and checks both the API and the stored snapshot
func TestInvestmentFlow(t *testing.T) {
	ctx := getAuthContext()

	before := getProject(t, ctx, 3)
	raisedBefore := decimalField(t, before, "raisedAmount")

	resp, err := grpcClient.RecordInvestment(ctx, newRequest(t, map[string]any{
		"projectId": 3,
		"amount":    "1.25",
		"investor":  "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	}))
	require.NoError(t, err, "RecordInvestment should succeed")

	project := resp.GetFields()["project"].GetStructValue().GetFields()
	raisedAfter := decimalField(t, project, "raisedAmount")
	assert.True(t, raisedAfter.Equal(raisedBefore.Add(decimal.RequireFromString("1.25"))), "Raised amount should grow by the investment")

	history := project["investmentHistory"].GetListValue().GetValues()
	require.NotEmpty(t, history)
	lastID := history[len(history)-1].GetStructValue().GetFields()["id"].GetStringValue()

	// The snapshot row holds the new ledger entry
	var document []byte
	err = db.QueryRowContext(ctx, `SELECT document FROM snapshots WHERE key = $1`, getSnapshotKey()).Scan(&document)
	require.NoError(t, err, "Snapshot row should exist")

	var snapshot struct {
		SchemaVersion int `json:"schemaVersion"`
		Projects      map[string]struct {
			InvestmentHistory []struct {
				ID string `json:"id"`
			} `json:"investmentHistory"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(document, &snapshot))
	assert.Equal(t, 1, snapshot.SchemaVersion)
	stored := snapshot.Projects["3"].InvestmentHistory
	require.NotEmpty(t, stored)
	assert.Equal(t, lastID, stored[len(stored)-1].ID)

	// Reset clears the ledger
	resp, err = grpcClient.ResetProjectFunding(ctx, newRequest(t, map[string]any{"projectId": 3}))
	require.NoError(t, err, "ResetProjectFunding should succeed")
	project = resp.GetFields()["project"].GetStructValue().GetFields()
	assert.True(t, decimalField(t, project, "raisedAmount").IsZero())
	assert.Empty(t, project["investmentHistory"].GetListValue().GetValues())
}

// TestMilestoneFlow completes, verifies and un-verifies a milestone and checks the released funds
func TestMilestoneFlow(t *testing.T) {
	ctx := getAuthContext()

	transition := func(fields map[string]any) (*structpb.Struct, error) {
		fields["projectId"] = 2
		fields["milestoneId"] = 1
		return grpcClient.TransitionMilestone(ctx, newRequest(t, fields))
	}

	// Start from a clean milestone whatever earlier runs left behind
	_, err := transition(map[string]any{"completed": false})
	require.NoError(t, err)
	walletBefore := decimalField(t, getProject(t, ctx, 2), "projectWalletBalance")

	_, err = transition(map[string]any{"completed": true})
	require.NoError(t, err)

	resp, err := transition(map[string]any{"verified": true})
	require.NoError(t, err)
	m := resp.GetFields()["milestone"].GetStructValue().GetFields()
	assert.True(t, m["verified"].GetBoolValue())
	assert.NotEmpty(t, m["proofHash"].GetStringValue())

	walletVerified := decimalField(t, getProject(t, ctx, 2), "projectWalletBalance")
	assert.True(t, walletVerified.Equal(walletBefore.Add(decimal.NewFromInt(45))), "HVAC payout should be released")

	_, err = transition(map[string]any{"verified": false})
	require.NoError(t, err)

	walletAfter := decimalField(t, getProject(t, ctx, 2), "projectWalletBalance")
	assert.True(t, walletAfter.Equal(walletBefore), "Un-verifying should remove the payout")
}

// TestReadFlow checks the read APIs
func TestReadFlow(t *testing.T) {
	ctx := getAuthContext()

	resp, err := grpcClient.ListProjects(ctx, nil)
	require.NoError(t, err)
	projects := resp.GetFields()["projects"].GetListValue().GetValues()
	require.GreaterOrEqual(t, len(projects), 3)

	summary, err := grpcClient.GetPortfolioSummary(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(len(projects)), summary.GetFields()["projectCount"].GetNumberValue())
}

func TestNegativeScenarios(t *testing.T) {
	ctx := getAuthContext()

	t.Run("InvalidAmount", func(t *testing.T) {
		_, err := grpcClient.RecordInvestment(ctx, newRequest(t, map[string]any{
			"projectId": 1, "amount": "-100.00", "investor": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "Error code should be InvalidArgument")
	})

	t.Run("NonExistentProject", func(t *testing.T) {
		_, err := grpcClient.GetProject(ctx, newRequest(t, map[string]any{"id": 9999}))
		assert.Equal(t, codes.NotFound, status.Code(err), "Error code should be NotFound")
	})

	t.Run("VerifyBeforeComplete", func(t *testing.T) {
		_, err := grpcClient.TransitionMilestone(ctx, newRequest(t, map[string]any{
			"projectId": 2, "milestoneId": 2, "completed": false,
		}))
		require.NoError(t, err)

		_, err = grpcClient.TransitionMilestone(ctx, newRequest(t, map[string]any{
			"projectId": 2, "milestoneId": 2, "verified": true,
		}))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err), "Error code should be FailedPrecondition")
	})

	t.Run("MissingToken", func(t *testing.T) {
		_, err := grpcClient.ListProjects(context.Background(), nil)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}
