package service

import (
	"strconv"
	"time"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"

	"golang.org/x/text/language"
)

// Order date facet values
const (
	PeriodToday     = "today"
	PeriodThisWeek  = "this_week"
	PeriodThisMonth = "this_month"
	PeriodThisYear  = "this_year"
)

func userSchema(locale language.Tag) listview.Schema[models.User] {
	return listview.Schema[models.User]{
		Search: func(u models.User) []string { return []string{u.Name, u.Email} },
		Facets: map[string]listview.Facet[models.User]{
			"role": func(u models.User, v string) bool { return u.Role == v },
			"from": func(u models.User, v string) bool {
				created, ok := parseTimestamp(u.CreatedAt)
				from, err := time.Parse(models.DateLayout, v)
				if !ok || err != nil {
					return false
				}
				return !created.Before(from)
			},
			"to": func(u models.User, v string) bool {
				created, ok := parseTimestamp(u.CreatedAt)
				to, err := time.Parse(models.DateLayout, v)
				if !ok || err != nil {
					return false
				}
				return created.Before(to.AddDate(0, 0, 1))
			},
		},
		Fields: map[string]listview.Field[models.User]{
			"id":            listview.NumberField(func(u models.User) float64 { return float64(u.ID) }),
			"name":          listview.TextField(func(u models.User) string { return u.Name }),
			"email":         listview.TextField(func(u models.User) string { return u.Email }),
			"role":          listview.TextField(func(u models.User) string { return u.Role }),
			"createdAt":     listview.TextField(func(u models.User) string { return u.CreatedAt }),
			"createdByName": listview.TextField(func(u models.User) string { return u.CreatedByName }),
		},
		Locale: locale,
	}
}

func categorySchema(locale language.Tag) listview.Schema[models.Category] {
	return listview.Schema[models.Category]{
		Search: func(c models.Category) []string { return []string{c.Name} },
		Fields: map[string]listview.Field[models.Category]{
			"id":           listview.NumberField(func(c models.Category) float64 { return float64(c.ID) }),
			"productCount": listview.NumberField(func(c models.Category) float64 { return float64(c.ProductCount) }),
			"name":         listview.TextField(func(c models.Category) string { return c.Name }),
		},
		Locale: locale,
	}
}

func productSchema(locale language.Tag) listview.Schema[models.Product] {
	return listview.Schema[models.Product]{
		Search: func(p models.Product) []string { return []string{p.Name, p.Category, p.UserName} },
		Facets: map[string]listview.Facet[models.Product]{
			"category": func(p models.Product, v string) bool { return p.Category == v },
			"user":     func(p models.Product, v string) bool { return idString(p.UserID) == v },
		},
		Fields: map[string]listview.Field[models.Product]{
			"id":       listview.NumberField(func(p models.Product) float64 { return float64(p.ID) }),
			"price":    listview.NumberField(func(p models.Product) float64 { return p.Price }),
			"stock":    listview.NumberField(func(p models.Product) float64 { return float64(p.Stock) }),
			"name":     listview.TextField(func(p models.Product) string { return p.Name }),
			"category": listview.TextField(func(p models.Product) string { return p.Category }),
			"userName": listview.TextField(func(p models.Product) string { return p.UserName }),
		},
		Locale: locale,
	}
}

func clientSchema(locale language.Tag) listview.Schema[ClientRow] {
	return listview.Schema[ClientRow]{
		Search: func(c ClientRow) []string { return []string{c.Name, c.Email} },
		Facets: map[string]listview.Facet[ClientRow]{
			"user": func(c ClientRow, v string) bool { return idString(c.AssignedUserID) == v },
			"has_orders": func(c ClientRow, v string) bool {
				switch v {
				case "has":
					return c.Orders > 0
				case "no":
					return c.Orders == 0
				}
				return true
			},
		},
		Fields: map[string]listview.Field[ClientRow]{
			"id":               listview.NumberField(func(c ClientRow) float64 { return float64(c.ID) }),
			"orders":           listview.NumberField(func(c ClientRow) float64 { return float64(c.Orders) }),
			"name":             listview.TextField(func(c ClientRow) string { return c.Name }),
			"email":            listview.TextField(func(c ClientRow) string { return c.Email }),
			"phone":            listview.TextField(func(c ClientRow) string { return c.Phone }),
			"address":          listview.TextField(func(c ClientRow) string { return c.Address }),
			"assignedUserName": listview.TextField(func(c ClientRow) string { return c.AssignedUserName }),
		},
		Locale: locale,
	}
}

// orderSchema takes now so that the date facet stays a pure function of its
// inputs.
func orderSchema(locale language.Tag, now time.Time) listview.Schema[models.Order] {
	return listview.Schema[models.Order]{
		Search: func(o models.Order) []string { return []string{strconv.FormatInt(o.ID, 10), o.ClientName} },
		Facets: map[string]listview.Facet[models.Order]{
			"status": func(o models.Order, v string) bool { return o.Status == v },
			"date": func(o models.Order, v string) bool {
				start, ok := PeriodStart(v, now)
				if !ok {
					return true
				}
				date, err := time.ParseInLocation(models.DateLayout, firstDate(o.Date), now.Location())
				if err != nil {
					return false
				}
				return !date.Before(start)
			},
		},
		Fields: map[string]listview.Field[models.Order]{
			"id":               listview.NumberField(func(o models.Order) float64 { return float64(o.ID) }),
			"total":            listview.NumberField(func(o models.Order) float64 { return o.Total }),
			"clientName":       listview.TextField(func(o models.Order) string { return o.ClientName }),
			"status":           listview.TextField(func(o models.Order) string { return o.Status }),
			"date":             listview.TextField(func(o models.Order) string { return o.Date }),
			"assignedUserName": listview.TextField(func(o models.Order) string { return o.AssignedUserName }),
		},
		Locale: locale,
	}
}

func invoiceSchema(locale language.Tag) listview.Schema[models.Invoice] {
	return listview.Schema[models.Invoice]{
		Search: func(i models.Invoice) []string {
			return []string{strconv.FormatInt(i.ID, 10), strconv.FormatInt(i.OrderID, 10), i.ClientName}
		},
		Facets: map[string]listview.Facet[models.Invoice]{
			"status": func(i models.Invoice, v string) bool { return i.Status == v },
			"client": func(i models.Invoice, v string) bool { return i.ClientName == v },
		},
		Fields: map[string]listview.Field[models.Invoice]{
			"id":               listview.NumberField(func(i models.Invoice) float64 { return float64(i.ID) }),
			"orderId":          listview.NumberField(func(i models.Invoice) float64 { return float64(i.OrderID) }),
			"amount":           listview.NumberField(func(i models.Invoice) float64 { return i.Amount }),
			"clientName":       listview.TextField(func(i models.Invoice) string { return i.ClientName }),
			"assignedUserName": listview.TextField(func(i models.Invoice) string { return i.AssignedUserName }),
			"date":             listview.TextField(func(i models.Invoice) string { return i.Date }),
			"status":           listview.TextField(func(i models.Invoice) string { return i.Status }),
		},
		Locale: locale,
	}
}

// PeriodStart returns the first instant of the period containing now. Weeks
// start on Monday.
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodToday:
		return today, true
	case PeriodThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), true
	case PeriodThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	case PeriodThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

func parseTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(models.DateLayout, firstDate(s)); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// firstDate trims a timestamp down to its YYYY-MM-DD prefix.
func firstDate(s string) string {
	if len(s) > len(models.DateLayout) {
		return s[:len(models.DateLayout)]
	}
	return s
}
