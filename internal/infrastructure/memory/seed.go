package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
)

func intPtr(v int) *int { return &v }

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func shopPrice(s string) decimal.NullDecimal { return decimal.NewNullDecimal(price(s)) }

// Seed loads the demo catalogue: three books at three shops, three customers and
// three historical orders dated relative to the store clock.
func (s *Store) Seed() error {
	for _, b := range []catalog.Book{
		{ID: 1, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "978-0743273565", Price: price("12.99"), PublicationYear: intPtr(1925), Genre: "Classic"},
		{ID: 2, Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "978-0446310789", Price: price("14.99"), PublicationYear: intPtr(1960), Genre: "Classic"},
		{ID: 3, Title: "1984", Author: "George Orwell", ISBN: "978-0451524935", Price: price("11.99"), PublicationYear: intPtr(1949), Genre: "Dystopian"},
	} {
		s.PutBook(b)
	}

	for _, sh := range []catalog.Shop{
		{ID: 1, Name: "Downtown Bookstore", Location: "Downtown", Address: "123 Main St", Phone: "555-0101", Email: "info@downtownbooks.com"},
		{ID: 2, Name: "University Bookshop", Location: "University District", Address: "456 College Ave", Phone: "555-0202", Email: "books@university.edu"},
		{ID: 3, Name: "Mall Bookstore", Location: "Shopping Mall", Address: "789 Mall Blvd", Phone: "555-0303", Email: "books@mall.com"},
	} {
		s.PutShop(sh)
	}

	for _, c := range []catalog.Customer{
		{ID: 1, FirstName: "John", LastName: "Doe", Email: "john.doe@email.com", Phone: "555-1001", City: "New York", State: "NY"},
		{ID: 2, FirstName: "Jane", LastName: "Smith", Email: "jane.smith@email.com", Phone: "555-1002", City: "Los Angeles", State: "CA"},
		{ID: 3, FirstName: "Bob", LastName: "Johnson", Email: "bob.johnson@email.com", Phone: "555-1003", City: "Chicago", State: "IL"},
	} {
		s.PutCustomer(c)
	}

	for _, l := range []inventory.Listing{
		{ID: 1, BookID: 1, ShopID: 1, Quantity: 10, ShopPrice: shopPrice("12.99")},
		{ID: 2, BookID: 1, ShopID: 2, Quantity: 5, ShopPrice: shopPrice("13.99")},
		{ID: 3, BookID: 2, ShopID: 1, Quantity: 8, ShopPrice: shopPrice("14.99")},
		{ID: 4, BookID: 2, ShopID: 3, Quantity: 12, ShopPrice: shopPrice("15.99")},
		{ID: 5, BookID: 3, ShopID: 2, Quantity: 15, ShopPrice: shopPrice("11.99")},
		{ID: 6, BookID: 3, ShopID: 3, Quantity: 7, ShopPrice: shopPrice("12.99")},
	} {
		if err := s.PutListing(l); err != nil {
			return err
		}
	}

	now := s.now()
	day := 24 * time.Hour
	for _, o := range []order.Order{
		{ID: 1, CustomerID: 1, ListingID: 1, Quantity: 2, OrderedAt: now.Add(-5 * day), TotalPrice: price("25.98"), Status: order.StatusCompleted},
		{ID: 2, CustomerID: 2, ListingID: 3, Quantity: 1, OrderedAt: now.Add(-3 * day), TotalPrice: price("14.99"), Status: order.StatusShipped},
		{ID: 3, CustomerID: 3, ListingID: 5, Quantity: 3, OrderedAt: now.Add(-1 * day), TotalPrice: price("35.97"), Status: order.StatusPending},
	} {
		if _, err := s.PutOrder(o); err != nil {
			return err
		}
	}
	return nil
}
