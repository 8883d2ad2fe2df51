package seeder

import (
	"github.com/greenretrofit/retrofit-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Catalog is the read-only registry of canonical projects keyed by id.
// Every accessor returns deep copies so callers can never mutate the seed.
type Catalog struct {
	projects domain.ProjectDictionary
}

// NewCatalog creates the catalog holding the built-in retrofit projects
func NewCatalog() *Catalog {
	return NewCatalogFrom(defaultProjects()...)
}

// NewCatalogFrom creates a catalog from the given projects.
// Scorecard base points are initialized from the achieved points when unset.
func NewCatalogFrom(projects ...*domain.Project) *Catalog {
	c := &Catalog{projects: make(domain.ProjectDictionary, len(projects))}
	for _, p := range projects {
		cp := p.Clone()
		if sc := cp.ImpactMetrics.LeedScorecard; sc != nil {
			initBasePoints(sc)
		}
		c.projects[cp.ID] = cp
	}
	return c
}

// Get returns a deep copy of the seed project with the given id
func (c *Catalog) Get(id int) (*domain.Project, bool) {
	p, ok := c.projects[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// All returns a deep copy of every seed project
func (c *Catalog) All() domain.ProjectDictionary {
	return c.projects.Clone()
}

func initBasePoints(sc *domain.LeedScorecard) {
	awarded := sc.ActiveAwards()
	for i := range sc.Categories {
		cat := &sc.Categories[i]
		if cat.BaseAchievedPoints == 0 {
			cat.BaseAchievedPoints = cat.AchievedPoints - awarded[cat.Category]
		}
	}
	if sc.BaseTotalPoints == 0 {
		total := sc.TotalPoints
		for _, pts := range awarded {
			total -= pts
		}
		sc.BaseTotalPoints = total
	}
	if sc.MilestoneHistory == nil {
		sc.MilestoneHistory = []domain.LeedHistoryEntry{}
	}
	sc.Recompute()
}

func category(name string, achieved, available int, notes string) domain.LeedScoreCategory {
	return domain.LeedScoreCategory{
		Category:        name,
		AchievedPoints:  achieved,
		AvailablePoints: available,
		Notes:           notes,
	}
}

func milestone(id int, name, description, amount string, contributions ...domain.LeedPointAward) domain.Milestone {
	return domain.Milestone{
		ID:                     id,
		Name:                   name,
		Description:            description,
		Amount:                 decimal.RequireFromString(amount),
		Documents:              []string{},
		LeedPointContributions: contributions,
	}
}

func award(category string, points int) domain.LeedPointAward {
	return domain.LeedPointAward{Category: category, Points: points}
}

func emptyLedgers(p *domain.Project) *domain.Project {
	p.InvestmentHistory = []domain.InvestmentTransaction{}
	p.MilestonePayoutHistory = []domain.MilestonePayoutTransaction{}
	if p.Milestones == nil {
		p.Milestones = []domain.Milestone{}
	}
	return p
}

const (
	catLocation   = "Location & Transportation"
	catSites      = "Sustainable Sites"
	catWater      = "Water Efficiency"
	catEnergy     = "Energy & Atmosphere"
	catMaterials  = "Materials & Resources"
	catIndoor     = "Indoor Environmental Quality"
	catInnovation = "Innovation"
	catRegional   = "Regional Priority"
)

func defaultProjects() []*domain.Project {
	return []*domain.Project{
		emptyLedgers(&domain.Project{
			ID:                   1,
			Name:                 "Downtown Office Retrofit",
			Description:          "Solar panel installation and window upgrades for commercial building",
			TargetAmount:         decimal.NewFromInt(50),
			RaisedAmount:         decimal.RequireFromString("0.01"),
			ExpectedReturn:       "8.5%",
			Duration:             "24 months",
			Status:               domain.ProjectStatusFunding,
			InvestorCount:        1,
			Address:              "123 Main St, New York, NY",
			Image:                "https://images.unsplash.com/photo-1486406146926-c627a92ad1ab?w=400&h=250&fit=crop",
			TokenContractAddress: "0x8A4e4A6E2C7cF0d3A9B1d263F4e5F61b7aFf1E21",
			TokenID:              "1",
			WalletAddress:        "0x3F5b2c1a9D7E8f6C5b4A1234567890dEfA123456",
			WalletBalance:        decimal.Zero,
			Milestones: []domain.Milestone{
				milestone(1, "Solar Panel Installation", "Install 100kW solar array on rooftop", "25",
					award(catEnergy, 4), award(catInnovation, 1)),
				milestone(2, "Window Upgrades", "Replace windows with double-paned energy-efficient glass", "15",
					award(catEnergy, 3), award(catIndoor, 2)),
			},
			ImpactMetrics: domain.ImpactMetrics{
				AnnualCO2Reduction: 128,
				EnergySavings:      32,
				JobsCreated:        18,
				LeedCertification:  "LEED Gold",
				LeedScorecard: &domain.LeedScorecard{
					CertificationLevel:    "LEED v4 BD+C: Major Renovation",
					TotalPoints:           79,
					CertificationDate:     "2024-03-18",
					ReviewingOrganization: "U.S. Green Building Council",
					ScorecardStatus:       "Certification Awarded",
					Categories: []domain.LeedScoreCategory{
						category(catLocation, 12, 16, "Transit access, reduced parking footprint, and bike facilities."),
						category(catSites, 8, 10, "High-performance roof and rainwater management installed."),
						category(catWater, 7, 11, "Fixture upgrades deliver a 36% indoor water use reduction."),
						category(catEnergy, 26, 33, "Solar array and controls drive a 28% modeled energy cost savings."),
						category(catMaterials, 6, 13, "Reused existing envelope and tracked EPD-backed materials."),
						category(catIndoor, 11, 16, "Daylight sensors and low-VOC finishes improve occupant comfort."),
						category(catInnovation, 5, 6, "Green cleaning program and education dashboard earn innovation credits."),
						category(catRegional, 4, 4, "Heat island mitigation aligns with NYSERDA regional priorities."),
					},
				},
			},
		}),
		emptyLedgers(&domain.Project{
			ID:                   2,
			Name:                 "Apartment Complex Green Upgrade",
			Description:          "HVAC system replacement and insulation for residential building",
			TargetAmount:         decimal.NewFromInt(75),
			RaisedAmount:         decimal.Zero,
			ExpectedReturn:       "7.2%",
			Duration:             "18 months",
			Status:               domain.ProjectStatusFunding,
			Address:              "456 Oak Ave, Chicago, IL",
			Image:                "https://images.unsplash.com/photo-1513584684374-8bab748fbf90?w=400&h=250&fit=crop",
			TokenContractAddress: "0x4B6c7D8E9F0a1b2C3d4E5f60718293aB4c5D6e7F",
			TokenID:              "2",
			WalletAddress:        "0x7C8d9e0F1A2b3c4D5e6F7890aBCdEf1234567890",
			WalletBalance:        decimal.Zero,
			Milestones: []domain.Milestone{
				milestone(1, "HVAC Replacement", "Install high-efficiency heating and cooling systems", "45",
					award(catEnergy, 5), award(catIndoor, 2)),
				milestone(2, "Building Insulation", "Add spray foam insulation to attics and walls", "30",
					award(catEnergy, 3), award(catWater, 2)),
			},
			ImpactMetrics: domain.ImpactMetrics{
				AnnualCO2Reduction: 94,
				EnergySavings:      27,
				JobsCreated:        22,
				LeedCertification:  "LEED Silver",
				LeedScorecard: &domain.LeedScorecard{
					CertificationLevel:    "LEED v4.1 O+M: Multifamily",
					TotalPoints:           58,
					CertificationDate:     "2023-11-07",
					ReviewingOrganization: "Green Business Certification Inc.",
					ScorecardStatus:       "Certification Awarded",
					Categories: []domain.LeedScoreCategory{
						category(catLocation, 10, 16, "Walkable neighborhood with discounted transit passes for residents."),
						category(catSites, 7, 10, "Native landscaping and light pollution controls verified."),
						category(catWater, 6, 11, "Submetering enables 28% irrigation water reduction."),
						category(catEnergy, 20, 33, "Geothermal-ready HVAC cut modeled EUI by 24% against baseline."),
						category(catMaterials, 5, 13, "Waste diversion tracked for 68% of construction waste stream."),
						category(catIndoor, 8, 16, "ERV retrofit improves ventilation effectiveness in common areas."),
						category(catInnovation, 2, 6, "Resident green ambassador program recognized for engagement."),
						category(catRegional, 0, 4, "Regional stormwater priority pursued but not awarded."),
					},
				},
			},
		}),
		emptyLedgers(&domain.Project{
			ID:                   3,
			Name:                 "Historic Building Modernization",
			Description:          "Energy efficiency upgrades while preserving historic character",
			TargetAmount:         decimal.NewFromInt(100),
			RaisedAmount:         decimal.Zero,
			ExpectedReturn:       "9.2%",
			Duration:             "30 months",
			Status:               domain.ProjectStatusFunding,
			Address:              "789 Heritage Lane, Boston, MA",
			Image:                "https://images.unsplash.com/photo-1545324418-cc1a3fa10c00?w=400&h=250&fit=crop",
			TokenContractAddress: "0x9d0E1F2a3B4c5D6e7F8091a2b3C4d5E6f7A8B9c0",
			TokenID:              "3",
			WalletAddress:        "0x12a3b4C5d6E7f8A9b0C1D2e3F4567890AbCdEf12",
			WalletBalance:        decimal.Zero,
			ImpactMetrics: domain.ImpactMetrics{
				AnnualCO2Reduction: 142,
				EnergySavings:      35,
				JobsCreated:        15,
				LeedCertification:  "LEED Platinum Pending",
				LeedScorecard: &domain.LeedScorecard{
					CertificationLevel: "LEED v4 BD+C: Core & Shell",
					TotalPoints:        85,
					ScorecardStatus:    "Design Review Approved – Construction Review Pending",
					Categories: []domain.LeedScoreCategory{
						category(catLocation, 13, 16, "Transit-oriented development with EV-ready parking projected."),
						category(catSites, 9, 10, "Green roofs and adaptive reuse of historic facade detailed in plans."),
						category(catWater, 9, 11, "Rainwater harvesting and greywater reuse model a 42% reduction."),
						category(catEnergy, 28, 33, "Targeting 38% modeled energy cost savings via geothermal and heat recovery."),
						category(catMaterials, 8, 13, "Adaptive reuse credits combined with EPD-backed finish selections."),
						category(catIndoor, 12, 16, "Daylighting analysis meets 75% regularly occupied space threshold."),
						category(catInnovation, 4, 6, "Biophilic design pattern guide submitted for exemplary performance."),
						category(catRegional, 4, 4, "Historic preservation and energy grid resiliency both prioritized regionally."),
					},
				},
			},
		}),
	}
}
