package postgres

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
)

const (
	tableBooks     = "books"
	tableShops     = "shops"
	tableListings  = "book_shops"
	tableOrders    = "orders"
	aliasListing   = "l"
	aliasBook      = "b"
	aliasShop      = "s"
	colID          = "id"
	colQuantity    = "quantity"
	colVersion     = "version"
	colCustomerID  = "customer_id"
	colListingID   = "book_shop_id"
	colOrderedAt   = "order_date"
	colTotalPrice  = "total_price"
	colStatus      = "status"
	colNotes       = "notes"
	colShippedAt   = "shipped_date"
	colShipMethod  = "shipping_method"
	colShipCost    = "shipping_cost"
	castNumeric    = "NUMERIC"
	dialectDefault = "postgres"
)

var dialect = goqu.Dialect(dialectDefault)

func listingViewSelect() *goqu.SelectDataset {
	return dialect.
		From(goqu.T(tableListings).As(aliasListing)).
		Join(goqu.T(tableBooks).As(aliasBook), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Join(goqu.T(tableShops).As(aliasShop), goqu.On(goqu.I("s.id").Eq(goqu.I("l.shop_id")))).
		Select(
			goqu.I("l.id"), goqu.I("l.book_id"), goqu.I("l.shop_id"), goqu.I("l.quantity"),
			goqu.L("l.shop_price::text"), goqu.L("COALESCE(l.notes, '')"), goqu.I("l.version"),
			goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.isbn"), goqu.L("b.price::text"),
			goqu.I("s.name"), goqu.L("COALESCE(s.location, '')"),
		).
		Prepared(true)
}

// buildSelectListingForUpdate locks only the listing row; the book and shop rows stay shared.
func buildSelectListingForUpdate(listingID int64) (string, []any, error) {
	q, args, err := listingViewSelect().
		Where(goqu.I("l.id").Eq(listingID)).
		ForUpdate(exp.Wait, goqu.T(aliasListing)).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return q, args, nil
}

func buildSelectListing(listingID int64) (string, []any, error) {
	q, args, err := listingViewSelect().Where(goqu.I("l.id").Eq(listingID)).ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return q, args, nil
}

func buildSelectAvailableByShop(shopID int64) (string, []any, error) {
	q, args, err := listingViewSelect().
		Where(goqu.I("l.shop_id").Eq(shopID), goqu.I("l.quantity").Gt(0)).
		Order(goqu.I("b.title").Asc(), goqu.I("l.id").Asc()).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return q, args, nil
}

func buildInsertOrder(o *order.Order) (string, []any, error) {
	var shippedAt any
	if o.ShippedAt != nil {
		shippedAt = *o.ShippedAt
	}
	var notes, method, shipCost any
	if o.Notes != "" {
		notes = o.Notes
	}
	if o.ShippingMethod != "" {
		method = o.ShippingMethod
	}
	if !o.ShippingCost.IsZero() {
		shipCost = goqu.Cast(goqu.V(o.ShippingCost.String()), castNumeric)
	}

	q, args, err := dialect.
		Insert(tableOrders).
		Rows(goqu.Record{
			colCustomerID: o.CustomerID,
			colListingID:  o.ListingID,
			colQuantity:   o.Quantity,
			colOrderedAt:  o.OrderedAt,
			colTotalPrice: goqu.Cast(goqu.V(o.TotalPrice.String()), castNumeric),
			colStatus:     string(o.Status),
			colNotes:      notes,
			colShippedAt:  shippedAt,
			colShipMethod: method,
			colShipCost:   shipCost,
		}).
		Returning(goqu.C(colID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return q, args, nil
}

// buildUpdateListingQuantity only matches when the row still carries expectedVersion.
func buildUpdateListingQuantity(listingID int64, newQuantity int, expectedVersion int64) (string, []any, error) {
	q, args, err := dialect.
		Update(tableListings).
		Set(goqu.Record{
			colQuantity: newQuantity,
			colVersion:  goqu.L("version + 1"),
		}).
		Where(goqu.C(colID).Eq(listingID), goqu.C(colVersion).Eq(expectedVersion)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return q, args, nil
}

func buildSelectOrder(id int64) (string, []any, error) {
	q, args, err := dialect.
		From(tableOrders).
		Select(
			goqu.C(colID), goqu.C(colCustomerID), goqu.C(colListingID), goqu.C(colQuantity),
			goqu.C(colOrderedAt), goqu.L("total_price::text"), goqu.C(colStatus),
			goqu.L("COALESCE(notes, '')"), goqu.C(colShippedAt),
			goqu.L("COALESCE(shipping_method, '')"), goqu.L("COALESCE(shipping_cost, 0)::text"),
		).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return q, args, nil
}
