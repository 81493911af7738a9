package service

import (
	"context"
	"sort"
	"time"

	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"
)

const (
	topProductsLimit = 5
	userGrowthMonths = 12
	monthLayout      = "2006-01"
)

// DashboardService reduces the collections into the dashboard figures.
type DashboardService struct {
	*base
}

type KPIs struct {
	TotalUsers    int     `json:"totalUsers"`
	TotalOrders   int     `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	PendingOrders int     `json:"pendingOrders"`
}

// Point is one labelled value of a chart series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Summary struct {
	KPIs                 KPIs    `json:"kpis"`
	StatusHistogram      []Point `json:"statusHistogram"`
	MonthlyRevenue       []Point `json:"monthlyRevenue"`
	TopProducts          []Point `json:"topProducts"`
	CategoryDistribution []Point `json:"categoryDistribution"`
	UserGrowth           []Point `json:"userGrowth"`
}

func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Summary")
	defer span.End()

	users := store.Read[models.User](ctx, s.store, models.CollectionUsers)
	orders := store.Read[models.Order](ctx, s.store, models.CollectionOrders)
	products := store.Read[models.Product](ctx, s.store, models.CollectionProducts)
	categories := store.Read[models.Category](ctx, s.store, models.CollectionCategories)

	return Summarize(users, orders, products, categories, s.now()), nil
}

// Summarize computes the dashboard from the given collections as of now.
func Summarize(users []models.User, orders []models.Order, products []models.Product, categories []models.Category, now time.Time) *Summary {
	out := &Summary{
		KPIs: KPIs{
			TotalUsers:  len(users),
			TotalOrders: len(orders),
		},
	}

	statusIdx := make(map[string]int)
	monthly := make(map[string]float64)
	for _, o := range orders {
		out.KPIs.TotalRevenue += o.Total
		if o.Status == models.OrderStatusPending {
			out.KPIs.PendingOrders++
		}

		if i, ok := statusIdx[o.Status]; ok {
			out.StatusHistogram[i].Value++
		} else {
			statusIdx[o.Status] = len(out.StatusHistogram)
			out.StatusHistogram = append(out.StatusHistogram, Point{Label: o.Status, Value: 1})
		}

		if d, err := time.Parse(models.DateLayout, firstDate(o.Date)); err == nil {
			monthly[d.Format(monthLayout)] += o.Total
		}
	}

	out.MonthlyRevenue = make([]Point, 0, len(monthly))
	for month, total := range monthly {
		out.MonthlyRevenue = append(out.MonthlyRevenue, Point{Label: month, Value: total})
	}
	sort.Slice(out.MonthlyRevenue, func(i, j int) bool {
		return out.MonthlyRevenue[i].Label < out.MonthlyRevenue[j].Label
	})

	out.TopProducts = topProducts(orders, products)
	out.CategoryDistribution = categoryDistribution(categories, products)
	out.UserGrowth = userGrowth(users, now)

	if out.StatusHistogram == nil {
		out.StatusHistogram = []Point{}
	}
	return out
}

func topProducts(orders []models.Order, products []models.Product) []Point {
	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	sold := make(map[int64]int)
	for _, o := range orders {
		for _, line := range o.Products {
			if _, ok := names[line.ProductID]; ok {
				sold[line.ProductID] += line.Quantity
			}
		}
	}

	out := make([]Point, 0, len(sold))
	for id, qty := range sold {
		out = append(out, Point{Label: names[id], Value: float64(qty)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > topProductsLimit {
		out = out[:topProductsLimit]
	}
	return out
}

func categoryDistribution(categories []models.Category, products []models.Product) []Point {
	out := make([]Point, 0, len(categories))
	for _, c := range categories {
		out = append(out, Point{Label: c.Name, Value: float64(countProducts(c, products))})
	}
	return out
}

// userGrowth returns the running user count over the last twelve months,
// oldest first. Users without a creation date count in the current month.
func userGrowth(users []models.User, now time.Time) []Point {
	byMonth := make(map[string]int)
	for _, u := range users {
		created, ok := parseTimestamp(u.CreatedAt)
		if !ok {
			created = now
		}
		byMonth[created.Format(monthLayout)]++
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]Point, 0, userGrowthMonths)
	total := 0
	for i := userGrowthMonths - 1; i >= 0; i-- {
		month := first.AddDate(0, -i, 0).Format(monthLayout)
		total += byMonth[month]
		out = append(out, Point{Label: month, Value: float64(total)})
	}
	return out
}
