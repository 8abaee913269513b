package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID accepts ids the backend sends as numbers or strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Notification is one header notification.
type Notification struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

// MonthlySale is one bar of the sales chart.
type MonthlySale struct {
	Month       string          `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OrderCount  int64           `json:"orderCount"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

type loginResponse struct {
	Status      string `json:"status"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

type customersResponse struct {
	TotalCustomers int64 `json:"totalCustomers"`
}

type incomeRow struct {
	TotalIncome decimal.Decimal `json:"totalIncome"`
}

// PlaceholderImageURL stands in for products whose image list is missing or unreadable.
const PlaceholderImageURL = "/placeholder-image.jpg"

// PopularProduct is one row of the most ordered products panel.
type PopularProduct struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	ImageURL  string `json:"imageUrl"`
	TotalSold int64  `json:"totalSold"`
}

type mostOrderedRow struct {
	ID        ID          `json:"id"`
	TotalSold json.Number `json:"totalSold"`
	Product   struct {
		Title    string          `json:"title"`
		Category string          `json:"category"`
		Images   json.RawMessage `json:"images"`
	} `json:"product"`
}

func (row mostOrderedRow) popular() PopularProduct {
	sold, err := row.TotalSold.Int64()
	if err != nil {
		if f, ferr := row.TotalSold.Float64(); ferr == nil {
			sold = int64(f)
		}
	}
	return PopularProduct{
		ID:        row.ID,
		Title:     row.Product.Title,
		Category:  row.Product.Category,
		ImageURL:  firstImageURL(row.Product.Images),
		TotalSold: sold,
	}
}

// firstImageURL reads the url of the first image. The backend stores the image
// list as a JSON string, so both an encoded string and a plain array are accepted.
func firstImageURL(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return PlaceholderImageURL
		}
		raw = []byte(encoded)
	}
	var images []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &images); err != nil || len(images) == 0 || images[0].URL == "" {
		return PlaceholderImageURL
	}
	return images[0].URL
}

// IncomeTotal is the dashboard income figure.
type IncomeTotal struct {
	Amount decimal.Decimal `json:"amount"`
}
