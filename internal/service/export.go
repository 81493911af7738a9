package service

import (
	"fmt"
	"strings"

	"techstore-admin/internal/models"
)

// Export is a CSV-ready table built from the filtered and sorted view of a
// collection, every page included.
type Export struct {
	Collection string
	Filename   string
	Headers    []string
	Rows       [][]any
}

func userExport(users []models.User) *Export {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{u.ID, u.Name, u.Email, u.Role, u.CreatedByName, u.CreatedAt})
	}
	return &Export{
		Collection: models.CollectionUsers,
		Filename:   "utilisateurs.csv",
		Headers:    []string{"ID", "Nom", "Email", "Rôle", "Créé par", "Date de création"},
		Rows:       rows,
	}
}

func categoryExport(categories []models.Category) *Export {
	rows := make([][]any, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []any{c.ID, c.Name, c.ProductCount})
	}
	return &Export{
		Collection: models.CollectionCategories,
		Filename:   "categories.csv",
		Headers:    []string{"ID", "Nom", "Nombre de produits"},
		Rows:       rows,
	}
}

func productExport(products []models.Product) *Export {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{p.ID, p.Name, p.Price, p.Stock, p.Category, p.UserName})
	}
	return &Export{
		Collection: models.CollectionProducts,
		Filename:   "produits.csv",
		Headers:    []string{"ID", "Nom", "Prix", "Stock", "Catégorie", "Utilisateur"},
		Rows:       rows,
	}
}

func clientExport(clients []ClientRow) *Export {
	rows := make([][]any, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []any{c.ID, c.Name, c.Email, c.Phone, c.Address, c.AssignedUserName, c.Orders})
	}
	return &Export{
		Collection: models.CollectionClients,
		Filename:   "clients.csv",
		Headers:    []string{"ID", "Nom", "Email", "Téléphone", "Adresse", "Utilisateur", "NbCommandes"},
		Rows:       rows,
	}
}

func orderExport(orders []models.Order) *Export {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []any{o.ID, o.ClientName, o.AssignedUserName, orderLinesCell(o.Products), o.Total, o.Status, o.Date})
	}
	return &Export{
		Collection: models.CollectionOrders,
		Filename:   "commandes.csv",
		Headers:    []string{"ID", "Client", "Utilisateur", "Produits", "Total", "Statut", "Date"},
		Rows:       rows,
	}
}

func invoiceExport(invoices []models.Invoice) *Export {
	rows := make([][]any, 0, len(invoices))
	for _, i := range invoices {
		rows = append(rows, []any{i.ID, i.OrderID, i.ClientName, i.AssignedUserName, i.Amount, i.Date, i.Status})
	}
	return &Export{
		Collection: models.CollectionInvoices,
		Filename:   "factures.csv",
		Headers:    []string{"ID", "Commande ID", "Client", "Utilisateur", "Montant", "Date", "Statut"},
		Rows:       rows,
	}
}

// orderLinesCell renders lines as "productIdxquantity" joined by ";".
func orderLinesCell(lines []models.OrderLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%dx%d", l.ProductID, l.Quantity)
	}
	return strings.Join(parts, ";")
}
