package billing

import (
	"time"
)

// CategoryType classifies a utility bill.
type CategoryType string

const (
	CategoryElectricity CategoryType = "Electricity"
	CategoryWater       CategoryType = "Water"
	CategoryGas         CategoryType = "Gas"
	CategoryInternet    CategoryType = "Internet"
)

// AllCategories lists the selectable bill categories in display order.
var AllCategories = []CategoryType{
	CategoryElectricity,
	CategoryWater,
	CategoryGas,
	CategoryInternet,
}

// StatusPaid is the status a payment record carries once settled.
const StatusPaid = "Paid"

// Bill is one utility bill as served by the remote bills service.
type Bill struct {
	ID          string       `json:"_id,omitempty"`
	Title       string       `json:"title,omitempty"`
	Category    CategoryType `json:"category,omitempty"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location,omitempty"`
	ImageURL    string       `json:"image,omitempty"`
	Amount      float64      `json:"amount,omitempty"`
	Date        string       `json:"date,omitempty"` // YYYY-MM-DD
}

// Payment is one paid-bill record.
type Payment struct {
	ID             string  `json:"_id,omitempty"`
	BillID         string  `json:"billId,omitempty"`
	Username       string  `json:"username,omitempty"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Address        string  `json:"address,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	DatePaid       string  `json:"datePaid,omitempty"` // YYYY-MM-DD
	AdditionalInfo string  `json:"additionalInfo,omitempty"`
	Status         string  `json:"status,omitempty"`
}

// PayableNow reports whether the bill may be paid at the given time: a bill
// is payable only within its own calendar month.
func (b Bill) PayableNow(now time.Time) bool {
	billDate, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		return false
	}
	return billDate.Year() == now.Year() && billDate.Month() == now.Month()
}
