package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the category of an inventory asset
type Kind string

const (
	KindLicense    Kind = "license"
	KindSoftware   Kind = "software"
	KindPayment    Kind = "payment"
	KindPurchase   Kind = "purchase"
	KindThirdParty Kind = "third_party"
)

// Kinds lists every asset kind in display order
var Kinds = []Kind{KindLicense, KindSoftware, KindPayment, KindPurchase, KindThirdParty}

// ParseKind converts a string to a Kind
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown asset kind %q", s)
}

// Label is the short tag shown in lists
func (k Kind) Label() string {
	switch k {
	case KindLicense:
		return "LIC"
	case KindSoftware:
		return "SW"
	case KindPayment:
		return "PAY"
	case KindPurchase:
		return "PO"
	case KindThirdParty:
		return "3P"
	default:
		return "?"
	}
}

// Asset is one inventory record
type Asset struct {
	ID     string     `yaml:"id" db:"id"`
	Kind   Kind       `yaml:"kind" db:"kind"`
	Name   string     `yaml:"name" db:"name"`
	Vendor string     `yaml:"vendor" db:"vendor"`
	Seats  int        `yaml:"seats,omitempty" db:"seats"`
	Cost   float64    `yaml:"cost,omitempty" db:"cost"`
	Expiry *time.Time `yaml:"expiry,omitempty" db:"expiry"`
	Notes  string     `yaml:"notes,omitempty" db:"notes"`
}

// SearchText joins every field value so a query can match any of them
func (a Asset) SearchText() string {
	parts := []string{a.ID, string(a.Kind), a.Name, a.Vendor}
	if a.Seats > 0 {
		parts = append(parts, strconv.Itoa(a.Seats))
	}
	if a.Cost > 0 {
		parts = append(parts, strconv.FormatFloat(a.Cost, 'f', 2, 64))
	}
	if a.Expiry != nil {
		parts = append(parts, a.Expiry.Format(time.DateOnly))
	}
	if a.Notes != "" {
		parts = append(parts, a.Notes)
	}
	return strings.Join(parts, " ")
}

// Expired reports whether the asset has an expiry before now
func (a Asset) Expired(now time.Time) bool {
	return a.Expiry != nil && a.Expiry.Before(now)
}

// Details renders the asset as a multi-line description
func (a Asset) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", a.Name)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(a.Name)))
	fmt.Fprintf(&b, "ID:      %s\n", a.ID)
	fmt.Fprintf(&b, "Kind:    %s\n", a.Kind)
	fmt.Fprintf(&b, "Vendor:  %s\n", a.Vendor)
	if a.Seats > 0 {
		fmt.Fprintf(&b, "Seats:   %d\n", a.Seats)
	}
	if a.Cost > 0 {
		fmt.Fprintf(&b, "Cost:    %.2f\n", a.Cost)
	}
	if a.Expiry != nil {
		fmt.Fprintf(&b, "Expiry:  %s\n", a.Expiry.Format(time.DateOnly))
	} else {
		fmt.Fprintf(&b, "Expiry:  never\n")
	}
	if a.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Notes)
	}
	return b.String()
}
