package dashboard

import (
	"context"

	"github.com/angelmondragon/jewelry-admin/internal/remote"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Remote is the backend surface for dashboard figures.
type Remote interface {
	TotalCustomers(ctx context.Context) (int64, error)
	TotalIncome(ctx context.Context) (remote.IncomeTotal, error)
	MonthlySales(ctx context.Context) ([]remote.MonthlySale, error)
	MostOrdered(ctx context.Context) ([]remote.PopularProduct, error)
}

// Notifier surfaces partial failures to the operator.
type Notifier interface {
	Error(message string)
}

// Summary is the dashboard card set. Figures that failed to load stay at zero and
// are named in Failed.
type Summary struct {
	TotalCustomers int64                   `json:"totalCustomers"`
	TotalIncome    decimal.Decimal         `json:"totalIncome"`
	MonthlySales   []remote.MonthlySale    `json:"monthlySales"`
	MostOrdered    []remote.PopularProduct `json:"mostOrdered"`
	PopularOrders  int64                   `json:"popularOrders"`
	Failed         []string                `json:"failed,omitempty"`
}

type Service struct {
	remote Remote
	notify Notifier
	logg   *logger.Logger
}

func NewService(r Remote, notify Notifier, logg *logger.Logger) (*Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dashboard remote required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{remote: r, notify: notify, logg: logg}, nil
}

// Load fetches the dashboard figures concurrently. It never fails as a whole.
func (s *Service) Load(ctx context.Context) Summary {
	var (
		customers    int64
		income       remote.IncomeTotal
		sales        []remote.MonthlySale
		popular      []remote.PopularProduct
		customersErr error
		incomeErr    error
		salesErr     error
		popularErr   error
	)

	var g errgroup.Group
	g.Go(func() error {
		customers, customersErr = s.remote.TotalCustomers(ctx)
		return nil
	})
	g.Go(func() error {
		income, incomeErr = s.remote.TotalIncome(ctx)
		return nil
	})
	g.Go(func() error {
		sales, salesErr = s.remote.MonthlySales(ctx)
		return nil
	})
	g.Go(func() error {
		popular, popularErr = s.remote.MostOrdered(ctx)
		return nil
	})
	_ = g.Wait()

	summary := Summary{
		MonthlySales: []remote.MonthlySale{},
		MostOrdered:  []remote.PopularProduct{},
		TotalIncome:  decimal.Zero,
	}
	if s.check(ctx, "totalCustomers", customersErr) {
		summary.TotalCustomers = customers
	} else {
		summary.Failed = append(summary.Failed, "totalCustomers")
	}
	if s.check(ctx, "totalIncome", incomeErr) {
		summary.TotalIncome = income.Amount
	} else {
		summary.Failed = append(summary.Failed, "totalIncome")
	}
	if s.check(ctx, "monthlySales", salesErr) {
		if sales != nil {
			summary.MonthlySales = sales
		}
	} else {
		summary.Failed = append(summary.Failed, "monthlySales")
	}
	if s.check(ctx, "mostOrdered", popularErr) {
		for _, p := range popular {
			summary.MostOrdered = append(summary.MostOrdered, p)
			summary.PopularOrders += p.TotalSold
		}
	} else {
		summary.Failed = append(summary.Failed, "mostOrdered")
	}
	return summary
}

func (s *Service) check(ctx context.Context, figure string, err error) bool {
	if err == nil {
		return true
	}
	s.logg.Error(s.logg.WithField(ctx, "figure", figure), "dashboard figure failed", err)
	if s.notify != nil {
		s.notify.Error("Failed to load " + figure)
	}
	return false
}
