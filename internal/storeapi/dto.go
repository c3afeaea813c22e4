package storeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type productsResponse struct {
	Products []productDTO `json:"products"`
	Error    string       `json:"error,omitempty"`
}

type productDTO struct {
	ID          flexString  `json:"id"`
	Category    string      `json:"category"`
	Name        string      `json:"name"`
	Unit        string      `json:"unit"`
	Price       flexDecimal `json:"price"`
	Sort        flexDecimal `json:"sort"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image,omitempty"`
}

type orderRequest struct {
	Reference  string          `json:"ref"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Address    string          `json:"address"`
	Comment    string          `json:"comment,omitempty"`
	Items      []lineItemDTO   `json:"items"`
	Total      json.Number     `json:"total"`
	Delivery   json.Number     `json:"delivery"`
	GrandTotal json.Number     `json:"grandTotal"`
	Currency   string          `json:"currency"`
	User       platformUserDTO `json:"user"`
	Token      string          `json:"token,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type lineItemDTO struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Unit     string      `json:"unit"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"qty"`
	Sum      json.Number `json:"sum"`
}

type platformUserDTO struct {
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Anonymous bool   `json:"anonymous,omitempty"`
}

type orderResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

// flexString accepts both JSON strings and numbers, spreadsheet ids come as either.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*s = flexString(n.String())
	return nil
}

// flexDecimal is a decimal where blank cells (null or "") read as zero.
type flexDecimal struct {
	decimal.Decimal
}

func (d *flexDecimal) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		d.Decimal = decimal.Zero
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		unquoted, err := strconv.Unquote(trimmed)
		if err != nil {
			return err
		}
		// spreadsheets in some locales export "12,50"
		trimmed = strings.ReplaceAll(strings.TrimSpace(unquoted), ",", ".")
	}

	v, err := decimal.NewFromString(trimmed)
	if err != nil {
		return fmt.Errorf("decimal.NewFromString: %w", err)
	}
	d.Decimal = v
	return nil
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func mapProductDTOToDomain(dto productDTO) domain.Product {
	return domain.Product{
		ID:          string(dto.ID),
		Category:    strings.TrimSpace(dto.Category),
		Name:        strings.TrimSpace(dto.Name),
		Unit:        strings.TrimSpace(dto.Unit),
		Price:       dto.Price.Decimal,
		Sort:        dto.Sort.InexactFloat64(),
		Description: dto.Description,
		Image:       dto.Image,
	}
}

func mapPayloadToRequest(p domain.OrderPayload) orderRequest {
	items := make([]lineItemDTO, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, lineItemDTO{
			ID:       item.ProductID,
			Name:     item.Name,
			Unit:     item.Unit,
			Price:    number(item.Price),
			Quantity: item.Quantity,
			Sum:      number(item.Sum),
		})
	}

	user := platformUserDTO{Anonymous: true}
	if !p.User.IsAnonymous() {
		user = platformUserDTO{
			ID:        p.User.ID,
			Username:  p.User.Username,
			FirstName: p.User.FirstName,
			LastName:  p.User.LastName,
		}
	}

	return orderRequest{
		Reference:  p.Reference.String(),
		Name:       p.Customer.Name,
		Phone:      p.Customer.Phone,
		Address:    p.Customer.Address,
		Comment:    p.Customer.Comment,
		Items:      items,
		Total:      number(p.Totals.Subtotal.Amount),
		Delivery:   number(p.Totals.Delivery.Amount),
		GrandTotal: number(p.Totals.GrandTotal.Amount),
		Currency:   p.Totals.GrandTotal.Currency.String(),
		User:       user,
		Token:      p.Token,
		CreatedAt:  p.CreatedAt,
	}
}
