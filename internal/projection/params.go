package projection

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

var monthsPerYear = decimal.NewFromInt(12)

// Params is the flat configuration of one pricing variant. Monthly rates are
// derived from the annual SaaS figures plus the add-ons unless set explicitly.
type Params struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description,omitempty"`

	SetupCost        float64 `yaml:"setup_cost" json:"setup_cost" validate:"gte=0"`
	SetupPrice       float64 `yaml:"setup_price" json:"setup_price" validate:"gte=0"`
	SaasCost         float64 `yaml:"saas_cost" json:"saas_cost" validate:"gte=0"`
	SaasPrice        float64 `yaml:"saas_price" json:"saas_price" validate:"gte=0"`
	MaintenanceCost  float64 `yaml:"maintenance_cost" json:"maintenance_cost" validate:"gte=0"`
	MaintenancePrice float64 `yaml:"maintenance_price" json:"maintenance_price" validate:"gte=0"`

	MonthlySaasAddon        float64 `yaml:"monthly_saas_addon" json:"monthly_saas_addon" validate:"gte=0"`
	MonthlyMaintenanceAddon float64 `yaml:"monthly_maintenance_addon" json:"monthly_maintenance_addon" validate:"gte=0"`

	MonthlyRevenueRate *float64 `yaml:"monthly_revenue_rate,omitempty" json:"monthly_revenue_rate,omitempty" validate:"omitempty,gte=0"`
	MonthlyCostRate    *float64 `yaml:"monthly_cost_rate,omitempty" json:"monthly_cost_rate,omitempty" validate:"omitempty,gte=0"`

	Months int `yaml:"months" json:"months" validate:"gte=0,lte=120"`
}

func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidParams, p.Name, err)
	}
	return nil
}

// Fingerprint identifies the figures p produces. Two params with the same
// fingerprint render the same projection.
func (p Params) Fingerprint() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("fingerprint %q: %w", p.Name, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Input builds the calculator input for p.
func (p Params) Input() (ProjectionInput, error) {
	if err := p.Validate(); err != nil {
		return ProjectionInput{}, err
	}

	saasPrice := decimal.NewFromFloat(p.SaasPrice)
	saasCost := decimal.NewFromFloat(p.SaasCost)

	in := ProjectionInput{
		Items: []LineItem{
			{Name: SetupItemName, OurCost: decimal.NewFromFloat(p.SetupCost), ClientPrice: decimal.NewFromFloat(p.SetupPrice)},
			{Name: ServiceItemName, OurCost: saasCost, ClientPrice: saasPrice},
			{Name: MaintenanceItemName, OurCost: decimal.NewFromFloat(p.MaintenanceCost), ClientPrice: decimal.NewFromFloat(p.MaintenancePrice)},
		},
		MonthlyRevenueRate: saasPrice.Div(monthsPerYear).Add(decimal.NewFromFloat(p.MonthlySaasAddon)),
		MonthlyCostRate:    saasCost.Div(monthsPerYear).Add(decimal.NewFromFloat(p.MonthlyMaintenanceAddon)),
		Months:             p.Months,
	}
	if p.MonthlyRevenueRate != nil {
		in.MonthlyRevenueRate = decimal.NewFromFloat(*p.MonthlyRevenueRate)
	}
	if p.MonthlyCostRate != nil {
		in.MonthlyCostRate = decimal.NewFromFloat(*p.MonthlyCostRate)
	}
	return in, nil
}

// Calculate is a shorthand for building the input and running Calculate on it.
func (p Params) Calculate() (Projection, error) {
	in, err := p.Input()
	if err != nil {
		return Projection{}, err
	}
	return Calculate(in)
}
