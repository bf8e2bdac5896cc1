// Package search owns filter criteria, page state and their URL
// representation. The URL query string is the only durable copy of
// search state: every criteria type encodes to and decodes from it
// losslessly, so any listing page can be reproduced from a shared link.
package search

import (
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
	"github.com/AlessioMITRM/hogu-frontend-sub001/session"
)

var validate = validator.New()

// Criteria is the filter state of one listing surface. Encode and the
// vertical's decoder are mutually inverse for every valid value.
type Criteria interface {
	// Vertical identifies the listing surface the criteria belong to.
	Vertical() session.Vertical

	// Encode writes the criteria into URL query values. Zero-valued
	// filters are omitted.
	Encode() url.Values

	// Validate checks field formats (dates, counts). It does not
	// decide whether a search can run; see Ready.
	Validate() error

	// Ready reports whether the minimum required filter is present.
	Ready() bool
}

// Decoder reconstructs criteria from URL query values.
type Decoder func(url.Values) Criteria

func setStr(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func getInt(v url.Values, key string) int {
	n, err := strconv.Atoi(v.Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
		}
		return apperrors.InvalidInput("search criteria are invalid").WithDetail(fields)
	}
	return apperrors.InvalidInput(err.Error())
}

// LodgingCriteria filters the lodging listing surface.
type LodgingCriteria struct {
	Location string `validate:"required"`
	DateFrom string `validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `validate:"omitempty,datetime=2006-01-02"`
	Adults   int    `validate:"gte=0,lte=30"`
	Children int    `validate:"gte=0,lte=30"`
	Rooms    int    `validate:"gte=0,lte=30"`
}

func (c LodgingCriteria) Vertical() session.Vertical { return session.VerticalLodging }
func (c LodgingCriteria) Ready() bool                { return c.Location != "" }
func (c LodgingCriteria) Validate() error            { return wrapValidation(validate.Struct(c)) }

func (c LodgingCriteria) Encode() url.Values {
	v := url.Values{}
	setStr(v, "location", c.Location)
	setStr(v, "dateFrom", c.DateFrom)
	setStr(v, "dateTo", c.DateTo)
	setInt(v, "adults", c.Adults)
	setInt(v, "children", c.Children)
	setInt(v, "rooms", c.Rooms)
	return v
}

// DecodeLodging reconstructs lodging criteria from URL query values.
func DecodeLodging(v url.Values) Criteria {
	return LodgingCriteria{
		Location: v.Get("location"),
		DateFrom: v.Get("dateFrom"),
		DateTo:   v.Get("dateTo"),
		Adults:   getInt(v, "adults"),
		Children: getInt(v, "children"),
		Rooms:    getInt(v, "rooms"),
	}
}

// TransferCriteria filters the chauffeured transfer surface.
type TransferCriteria struct {
	FromCity   string `validate:"required"`
	ToCity     string `validate:"required"`
	Date       string `validate:"omitempty,datetime=2006-01-02"`
	Time       string `validate:"omitempty,datetime=15:04"`
	Passengers int    `validate:"gte=0,lte=50"`
}

func (c TransferCriteria) Vertical() session.Vertical { return session.VerticalTransfers }
func (c TransferCriteria) Ready() bool                { return c.FromCity != "" && c.ToCity != "" }
func (c TransferCriteria) Validate() error            { return wrapValidation(validate.Struct(c)) }

func (c TransferCriteria) Encode() url.Values {
	v := url.Values{}
	setStr(v, "fromCity", c.FromCity)
	setStr(v, "toCity", c.ToCity)
	setStr(v, "date", c.Date)
	setStr(v, "time", c.Time)
	setInt(v, "passengers", c.Passengers)
	return v
}

// DecodeTransfer reconstructs transfer criteria from URL query values.
func DecodeTransfer(v url.Values) Criteria {
	return TransferCriteria{
		FromCity:   v.Get("fromCity"),
		ToCity:     v.Get("toCity"),
		Date:       v.Get("date"),
		Time:       v.Get("time"),
		Passengers: getInt(v, "passengers"),
	}
}

// DiningCriteria filters the restaurant surface.
type DiningCriteria struct {
	Location string `validate:"required"`
	Date     string `validate:"omitempty,datetime=2006-01-02"`
	Time     string `validate:"omitempty,datetime=15:04"`
	Guests   int    `validate:"gte=0,lte=50"`
	Cuisine  string
}

func (c DiningCriteria) Vertical() session.Vertical { return session.VerticalDining }
func (c DiningCriteria) Ready() bool                { return c.Location != "" }
func (c DiningCriteria) Validate() error            { return wrapValidation(validate.Struct(c)) }

func (c DiningCriteria) Encode() url.Values {
	v := url.Values{}
	setStr(v, "location", c.Location)
	setStr(v, "date", c.Date)
	setStr(v, "time", c.Time)
	setInt(v, "guests", c.Guests)
	setStr(v, "cuisine", c.Cuisine)
	return v
}

// DecodeDining reconstructs dining criteria from URL query values.
func DecodeDining(v url.Values) Criteria {
	return DiningCriteria{
		Location: v.Get("location"),
		Date:     v.Get("date"),
		Time:     v.Get("time"),
		Guests:   getInt(v, "guests"),
		Cuisine:  v.Get("cuisine"),
	}
}

// ClubCriteria filters the club event surface.
type ClubCriteria struct {
	Location  string `validate:"required"`
	Date      string `validate:"omitempty,datetime=2006-01-02"`
	EventType string
	Guests    int `validate:"gte=0,lte=100"`
}

func (c ClubCriteria) Vertical() session.Vertical { return session.VerticalClubs }
func (c ClubCriteria) Ready() bool                { return c.Location != "" }
func (c ClubCriteria) Validate() error            { return wrapValidation(validate.Struct(c)) }

func (c ClubCriteria) Encode() url.Values {
	v := url.Values{}
	setStr(v, "location", c.Location)
	setStr(v, "date", c.Date)
	setStr(v, "eventType", c.EventType)
	setInt(v, "guests", c.Guests)
	return v
}

// DecodeClub reconstructs club criteria from URL query values.
func DecodeClub(v url.Values) Criteria {
	return ClubCriteria{
		Location:  v.Get("location"),
		Date:      v.Get("date"),
		EventType: v.Get("eventType"),
		Guests:    getInt(v, "guests"),
	}
}

// DepositCriteria filters the luggage deposit surface.
type DepositCriteria struct {
	Location string `validate:"required"`
	DateFrom string `validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `validate:"omitempty,datetime=2006-01-02"`
	Bags     int    `validate:"gte=0,lte=50"`
}

func (c DepositCriteria) Vertical() session.Vertical { return session.VerticalDeposit }
func (c DepositCriteria) Ready() bool                { return c.Location != "" }
func (c DepositCriteria) Validate() error            { return wrapValidation(validate.Struct(c)) }

func (c DepositCriteria) Encode() url.Values {
	v := url.Values{}
	setStr(v, "location", c.Location)
	setStr(v, "dateFrom", c.DateFrom)
	setStr(v, "dateTo", c.DateTo)
	setInt(v, "bags", c.Bags)
	return v
}

// DecodeDeposit reconstructs deposit criteria from URL query values.
func DecodeDeposit(v url.Values) Criteria {
	return DepositCriteria{
		Location: v.Get("location"),
		DateFrom: v.Get("dateFrom"),
		DateTo:   v.Get("dateTo"),
		Bags:     getInt(v, "bags"),
	}
}
