package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
)

const (
	quickSearchMinLength = 2
	quickSearchLimit     = 5
)

// Quick search result types
const (
	ResultProduct = "product"
	ResultClient  = "client"
	ResultOrder   = "order"
)

// SearchService backs the quick search overlay.
type SearchService struct {
	*base
}

type SearchResult struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Link  string `json:"link"`
}

// Quick matches product names, client names and emails, and order ids and
// client names. Queries shorter than two characters match nothing. At most
// five results are returned, products first.
func (s *SearchService) Quick(ctx context.Context, query string) []SearchResult {
	results := []SearchResult{}
	if len([]rune(query)) < quickSearchMinLength {
		return results
	}
	q := strings.ToLower(query)
	l := s.loadLookups(ctx)

	for _, p := range store.Read[models.Product](ctx, s.store, models.CollectionProducts) {
		if strings.Contains(strings.ToLower(p.Name), q) {
			results = append(results, SearchResult{Type: ResultProduct, ID: p.ID, Label: p.Name, Link: link(models.CollectionProducts, p.ID)})
		}
	}
	for _, c := range store.Read[models.Client](ctx, s.store, models.CollectionClients) {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Email), q) {
			results = append(results, SearchResult{Type: ResultClient, ID: c.ID, Label: c.Name, Link: link(models.CollectionClients, c.ID)})
		}
	}
	for _, o := range store.Read[models.Order](ctx, s.store, models.CollectionOrders) {
		o = l.order(o)
		if strings.Contains(strings.ToLower(o.ClientName), q) || strings.Contains(strconv.FormatInt(o.ID, 10), q) {
			results = append(results, SearchResult{
				Type:  ResultOrder,
				ID:    o.ID,
				Label: fmt.Sprintf("Commande #%d - %s", o.ID, o.ClientName),
				Link:  link(models.CollectionOrders, o.ID),
			})
		}
	}

	if len(results) > quickSearchLimit {
		results = results[:quickSearchLimit]
	}
	return results
}

func link(collection string, id int64) string {
	return fmt.Sprintf("/api/v1/%s/%d", collection, id)
}
