package httpapi

import (
	"encoding/json"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/shopspring/decimal"
)

type productResponse struct {
	ID          string      `json:"id"`
	Category    string      `json:"category"`
	Name        string      `json:"name"`
	Unit        string      `json:"unit"`
	Price       json.Number `json:"price"`
	Sort        float64     `json:"sort"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image,omitempty"`
}

type catalogResponse struct {
	Products   []productResponse `json:"products"`
	Categories []string          `json:"categories"`
	Source     string            `json:"source"`
}

type cartEntryResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"qty"`
	Sum      json.Number     `json:"sum"`
}

type totalsResponse struct {
	Subtotal   json.Number `json:"total"`
	Delivery   json.Number `json:"delivery"`
	GrandTotal json.Number `json:"grandTotal"`
	Currency   string      `json:"currency"`
}

type cartResponse struct {
	Items  []cartEntryResponse `json:"items"`
	Count  int                 `json:"count"`
	Totals totalsResponse      `json:"totals"`
}

type formResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Comment string `json:"comment"`
}

type sessionResponse struct {
	ID         string       `json:"id"`
	Cart       cartResponse `json:"cart"`
	Form       formResponse `json:"form"`
	Submitting bool         `json:"submitting"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"qty"`
}

type setQuantityRequest struct {
	Quantity *int `json:"qty" binding:"required"`
}

type platformUserRequest struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type checkoutRequest struct {
	Name    string               `json:"name"`
	Phone   string               `json:"phone"`
	Address string               `json:"address"`
	Comment string               `json:"comment"`
	User    *platformUserRequest `json:"user"`
}

type checkoutResponse struct {
	OK        bool           `json:"ok"`
	OrderID   string         `json:"orderId,omitempty"`
	Reference string         `json:"ref"`
	Totals    totalsResponse `json:"totals"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func mapProduct(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Category:    p.Category,
		Name:        p.Name,
		Unit:        p.Unit,
		Price:       number(p.Price),
		Sort:        p.Sort,
		Description: p.Description,
		Image:       p.Image,
	}
}

func mapProducts(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, mapProduct(p))
	}
	return out
}

func mapTotals(t domain.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:   number(t.Subtotal.Amount),
		Delivery:   number(t.Delivery.Amount),
		GrandTotal: number(t.GrandTotal.Amount),
		Currency:   t.GrandTotal.Currency.String(),
	}
}

func mapCartView(v service.CartView) cartResponse {
	items := make([]cartEntryResponse, 0, len(v.Items))
	for _, entry := range v.Items {
		items = append(items, cartEntryResponse{
			Product:  mapProduct(entry.Product),
			Quantity: entry.Quantity,
			Sum:      number(entry.Sum()),
		})
	}

	return cartResponse{
		Items:  items,
		Count:  v.Count,
		Totals: mapTotals(v.Totals),
	}
}

func mapSession(s *service.Session) sessionResponse {
	form := s.Form()

	return sessionResponse{
		ID:   s.ID(),
		Cart: mapCartView(s.View()),
		Form: formResponse{
			Name:    form.Name,
			Phone:   form.Phone,
			Address: form.Address,
			Comment: form.Comment,
		},
		Submitting: s.Submitting(),
	}
}

func (r checkoutRequest) fields() domain.CheckoutFields {
	return domain.CheckoutFields{
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
		Comment: r.Comment,
	}
}

func (r checkoutRequest) user() domain.PlatformUser {
	if r.User == nil || r.User.ID == 0 {
		return domain.AnonymousUser
	}

	return domain.PlatformUser{
		ID:        r.User.ID,
		Username:  r.User.Username,
		FirstName: r.User.FirstName,
		LastName:  r.User.LastName,
	}
}
