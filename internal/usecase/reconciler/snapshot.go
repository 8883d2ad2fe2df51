package reconciler

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SchemaVersion is the version written into every saved snapshot.
// Version 0 is the bare project dictionary without an envelope.
const SchemaVersion = 1

type snapshotEnvelope struct {
	SchemaVersion int                      `json:"schemaVersion"`
	Projects      domain.ProjectDictionary `json:"projects"`
}

func encodeSnapshot(projects domain.ProjectDictionary) ([]byte, error) {
	if projects == nil {
		projects = domain.ProjectDictionary{}
	}
	return json.Marshal(snapshotEnvelope{
		SchemaVersion: SchemaVersion,
		Projects:      projects,
	})
}

// rawProjects splits a snapshot document into per-project raw records keyed by the original map key
func rawProjects(data []byte) (map[string]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: document is null", domain.ErrCorruptSnapshot)
	}

	rawVersion, enveloped := top["schemaVersion"]
	if !enveloped {
		return top, nil
	}

	var version int
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		return nil, fmt.Errorf("%w: bad schema version: %v", domain.ErrCorruptSnapshot, err)
	}
	if version > SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", domain.ErrCorruptSnapshot, version)
	}

	projects := map[string]json.RawMessage{}
	if raw, ok := top["projects"]; ok {
		if err := json.Unmarshal(raw, &projects); err != nil {
			return nil, fmt.Errorf("%w: bad projects: %v", domain.ErrCorruptSnapshot, err)
		}
	}
	if projects == nil {
		projects = map[string]json.RawMessage{}
	}
	return projects, nil
}

// Records below mirror the domain JSON shape with every field optional,
// so an absent field can be told apart from a zero value.

type projectRecord struct {
	ID                     *int               `json:"id"`
	Name                   *string            `json:"name"`
	Description            *string            `json:"description"`
	TargetAmount           *looseDecimal      `json:"targetAmount"`
	RaisedAmount           *looseDecimal      `json:"raisedAmount"`
	ExpectedReturn         *string            `json:"expectedReturn"`
	Duration               *string            `json:"duration"`
	Status                 *string            `json:"status"`
	InvestorCount          *looseInt          `json:"investorCount"`
	Address                *string            `json:"address"`
	Image                  *string            `json:"image"`
	TokenContractAddress   *string            `json:"erc1155ContractAddress"`
	TokenID                *looseString       `json:"erc1155TokenId"`
	WalletAddress          *string            `json:"projectWalletAddress"`
	WalletBalance          *looseDecimal      `json:"projectWalletBalance"`
	Milestones             []milestoneRecord  `json:"milestones"`
	ImpactMetrics          *impactRecord      `json:"impactMetrics"`
	InvestmentHistory      []investmentRecord `json:"investmentHistory"`
	MilestonePayoutHistory []payoutRecord     `json:"milestonePayoutHistory"`
}

type milestoneRecord struct {
	ID                     *int                    `json:"id"`
	Name                   *string                 `json:"name"`
	Description            *string                 `json:"description"`
	Amount                 *looseDecimal           `json:"amount"`
	Completed              *bool                   `json:"completed"`
	Verified               *bool                   `json:"verified"`
	CompletedAt            *looseTime              `json:"completedAt"`
	VerifiedAt             *looseTime              `json:"verifiedAt"`
	ProofHash              *string                 `json:"proofHash"`
	Documents              []string                `json:"documents"`
	LeedPointContributions []domain.LeedPointAward `json:"leedPointContributions"`
	LeedHistoryID          *string                 `json:"leedHistoryId"`
	PayoutID               *string                 `json:"payoutId"`
}

type impactRecord struct {
	AnnualCO2Reduction *float64         `json:"annualCO2Reduction"`
	EnergySavings      *float64         `json:"energySavings"`
	JobsCreated        *int             `json:"jobsCreated"`
	LeedCertification  *string          `json:"leedCertification"`
	LeedScorecard      *scorecardRecord `json:"leedScorecard"`
}

type scorecardRecord struct {
	CertificationLevel    *string          `json:"certificationLevel"`
	TotalPoints           *int             `json:"totalPoints"`
	BaseTotalPoints       *int             `json:"baseTotalPoints"`
	CertificationDate     *string          `json:"certificationDate"`
	ReviewingOrganization *string          `json:"reviewingOrganization"`
	ScorecardStatus       *string          `json:"scorecardStatus"`
	Categories            []categoryRecord `json:"categories"`
	MilestoneHistory      []historyRecord  `json:"milestoneHistory"`
}

type categoryRecord struct {
	Category           string  `json:"category"`
	AchievedPoints     *int    `json:"achievedPoints"`
	AvailablePoints    *int    `json:"availablePoints"`
	Notes              *string `json:"notes"`
	BaseAchievedPoints *int    `json:"baseAchievedPoints"`
}

type historyRecord struct {
	ID                 string                  `json:"id"`
	MilestoneID        int                     `json:"milestoneId"`
	MilestoneName      string                  `json:"milestoneName"`
	VerifiedAt         looseTime               `json:"verifiedAt"`
	Awards             []domain.LeedPointAward `json:"awards"`
	TotalPointsAwarded *int                    `json:"totalPointsAwarded"`
	RolledBackAt       looseTime               `json:"rolledBackAt"`
}

type investmentRecord struct {
	ID             string       `json:"id"`
	Amount         looseDecimal `json:"amount"`
	Date           looseTime    `json:"date"`
	InvestorWallet string       `json:"investorWallet"`
}

type payoutRecord struct {
	ID            string       `json:"id"`
	MilestoneID   int          `json:"milestoneId"`
	MilestoneName string       `json:"milestoneName"`
	Amount        looseDecimal `json:"amount"`
	Date          looseTime    `json:"date"`
}

// looseDecimal accepts a JSON string or number; null and "" mean absent
type looseDecimal struct {
	value decimal.Decimal
	valid bool
}

func (d *looseDecimal) UnmarshalJSON(b []byte) error {
	s, ok := looseScalar(b)
	if !ok {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	d.value, d.valid = v, true
	return nil
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// looseInt accepts a JSON string or number holding an integer; null and "" mean absent
type looseInt struct {
	value int64
	valid bool
}

func (n *looseInt) UnmarshalJSON(b []byte) error {
	s, ok := looseScalar(b)
	if !ok {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil || !v.IsInteger() {
		return fmt.Errorf("invalid integer %q", s)
	}
	if v.LessThan(minInt64) || v.GreaterThan(maxInt64) {
		return fmt.Errorf("integer %q out of range", s)
	}
	n.value, n.valid = v.IntPart(), true
	return nil
}

// looseString accepts a JSON string or number
type looseString struct {
	value string
}

func (l *looseString) UnmarshalJSON(b []byte) error {
	s, ok := looseScalar(b)
	if ok {
		l.value = s
	}
	return nil
}

// looseTime accepts an RFC 3339 timestamp; null and "" mean absent
type looseTime struct {
	value time.Time
	valid bool
}

func (t *looseTime) UnmarshalJSON(b []byte) error {
	s, ok := looseScalar(b)
	if !ok {
		return nil
	}
	v, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.value, t.valid = v, true
	return nil
}

func (t looseTime) ptr() *time.Time {
	if !t.valid {
		return nil
	}
	v := t.value
	return &v
}

func looseScalar(b []byte) (string, bool) {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return "", false
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	return s, s != ""
}
