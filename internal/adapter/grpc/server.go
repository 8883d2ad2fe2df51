package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/dashboard"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/investment"
	"github.com/greenretrofit/retrofit-backend/internal/usecase/milestone"
)

// InvestmentSubmitter forwards an investment to an external ledger before it is recorded.
// RaisedOnChain wraps domain.ErrProjectNotFound when the ledger does not know the project.
type InvestmentSubmitter interface {
	ValidateInvestor(investor string) (string, error)
	Invest(ctx context.Context, projectID int, amount decimal.Decimal) (string, error)
	RaisedOnChain(ctx context.Context, projectID int) (decimal.Decimal, error)
}

// projectView is a project with its derived funding progress
type projectView struct {
	*domain.Project
	FundingProgress     string `json:"fundingProgress"`
	OnChainRaisedAmount string `json:"onChainRaisedAmount,omitempty"`
}

// Server implements the RetrofitService gRPC server
type Server struct {
	DashboardService  *dashboard.DashboardService
	InvestmentService *investment.InvestmentService
	MilestoneService  *milestone.MilestoneService

	// Submitter is optional; when nil investments are only recorded locally
	Submitter InvestmentSubmitter
	Logger    *zap.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(
	dashboardService *dashboard.DashboardService,
	investmentService *investment.InvestmentService,
	milestoneService *milestone.MilestoneService,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		DashboardService:  dashboardService,
		InvestmentService: investmentService,
		MilestoneService:  milestoneService,
		Logger:            logger,
	}
}

// ListProjects handles the ListProjects RPC
func (s *Server) ListProjects(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	projects, err := s.DashboardService.GetAllProjects(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, projectView{
			Project:         p,
			FundingProgress: investment.FundingProgress(p).String(),
		})
	}
	return toStruct(map[string]any{"projects": views})
}

// GetProject handles the GetProject RPC
func (s *Server) GetProject(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	projectID, err := idField(req, "id")
	if err != nil {
		return nil, err
	}

	project, err := s.DashboardService.GetProject(ctx, projectID)
	if err != nil {
		return nil, mapError(err)
	}
	progress, err := s.InvestmentService.CalculateFundingProgress(ctx, projectID)
	if err != nil {
		return nil, mapError(err)
	}

	view := projectView{Project: project, FundingProgress: progress.String()}
	if s.Submitter != nil {
		raised, err := s.Submitter.RaisedOnChain(ctx, projectID)
		if err != nil {
			s.Logger.Warn("failed to read on-chain project", zap.Int("project_id", projectID), zap.Error(err))
		} else {
			view.OnChainRaisedAmount = raised.String()
		}
	}
	return toStruct(map[string]any{"project": view})
}

// GetPortfolioSummary handles the GetPortfolioSummary RPC
func (s *Server) GetPortfolioSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	summary, err := s.DashboardService.GetPortfolioSummary(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{
		"projectCount":       summary.ProjectCount,
		"totalTarget":        summary.TotalTarget.String(),
		"totalRaised":        summary.TotalRaised.String(),
		"totalReleased":      summary.TotalReleased.String(),
		"totalInvestors":     strconv.FormatInt(summary.TotalInvestors, 10),
		"milestoneCount":     summary.MilestoneCount,
		"verifiedMilestones": summary.VerifiedMilestones,
		"certificationTotal": summary.CertificationTotal,
	})
}

// RecordInvestment handles the RecordInvestment RPC
// Logic:
//  1. Parse projectId, amount (string or number) and investor
//  2. With a Submitter, normalize the investor, check the contract knows the project and submit on chain first
//  3. Record the investment in the ledger
func (s *Server) RecordInvestment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	projectID, err := idField(req, "projectId")
	if err != nil {
		return nil, err
	}
	amount, err := amountField(req, "amount")
	if err != nil {
		return nil, err
	}
	investor := stringField(req, "investor")

	var txHash string
	if s.Submitter != nil {
		investor, err = s.Submitter.ValidateInvestor(investor)
		if err != nil {
			return nil, mapError(err)
		}
		parsed, err := investment.ParseAmount(amount)
		if err != nil {
			return nil, mapError(err)
		}
		// Unknown projects must not reach the chain
		if _, err := s.DashboardService.GetProject(ctx, projectID); err != nil {
			return nil, mapError(err)
		}
		if _, err := s.Submitter.RaisedOnChain(ctx, projectID); err != nil {
			if errors.Is(err, domain.ErrProjectNotFound) {
				return nil, status.Errorf(codes.FailedPrecondition, "project %d is not registered on chain", projectID)
			}
			s.Logger.Error("on-chain project lookup failed", zap.Int("project_id", projectID), zap.Error(err))
			return nil, status.Errorf(codes.Unavailable, "failed to read on-chain project: %v", err)
		}
		txHash, err = s.Submitter.Invest(ctx, projectID, parsed)
		if err != nil {
			s.Logger.Error("on-chain investment failed", zap.Int("project_id", projectID), zap.Error(err))
			return nil, status.Errorf(codes.Unavailable, "failed to submit investment: %v", err)
		}
	}

	project, err := s.InvestmentService.RecordInvestment(ctx, projectID, amount, investor)
	if err != nil {
		if txHash != "" {
			s.Logger.Error("investment submitted on chain but not recorded",
				zap.Int("project_id", projectID),
				zap.String("tx_hash", txHash),
				zap.Error(err),
			)
		}
		return nil, mapError(err)
	}

	resp := map[string]any{"project": project}
	if txHash != "" {
		resp["txHash"] = txHash
	}
	return toStruct(resp)
}

// TransitionMilestone handles the TransitionMilestone RPC
func (s *Server) TransitionMilestone(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	projectID, err := idField(req, "projectId")
	if err != nil {
		return nil, err
	}
	milestoneID, err := idField(req, "milestoneId")
	if err != nil {
		return nil, err
	}
	completed, err := boolField(req, "completed")
	if err != nil {
		return nil, err
	}
	verified, err := boolField(req, "verified")
	if err != nil {
		return nil, err
	}

	m, err := s.MilestoneService.TransitionMilestone(ctx, projectID, milestoneID, milestone.MilestoneUpdate{
		Completed: completed,
		Verified:  verified,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"milestone": m})
}

// ResetProjectFunding handles the ResetProjectFunding RPC
func (s *Server) ResetProjectFunding(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	projectID, err := idField(req, "projectId")
	if err != nil {
		return nil, err
	}

	project, err := s.InvestmentService.ResetProjectFunding(ctx, projectID)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"project": project})
}

// toStruct converts a JSON-serializable value into a Struct message
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// idField reads a positive integer id given as a number or a numeric string
func idField(req *structpb.Struct, name string) (int, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	var id int
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || n > math.MaxInt32 {
			return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
		}
		id = int(n)
	case *structpb.Value_StringValue:
		parsed, err := strconv.Atoi(strings.TrimSpace(kind.StringValue))
		if err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
		}
		id = parsed
	default:
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}

	if id <= 0 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be positive", name)
	}
	return id, nil
}

// amountField reads a decimal amount; strings are preferred to keep precision
func amountField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64), nil
	default:
		return "", status.Errorf(codes.InvalidArgument, "%s must be a decimal string", name)
	}
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

// boolField returns nil when the field is absent or null
func boolField(req *structpb.Struct, name string) (*bool, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_BoolValue:
		b := kind.BoolValue
		return &b, nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a boolean", name)
	}
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrProjectNotFound), errors.Is(err, domain.ErrMilestoneNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidInvestor):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", err))
	}
}
