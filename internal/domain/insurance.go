package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Confidence grades how the provider name was obtained.
type Confidence string

const (
	// ConfidenceHigh means a known carrier pattern matched.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow means the first plausible line of text was used.
	ConfidenceLow Confidence = "low"
	// ConfidenceNone means no provider could be inferred.
	ConfidenceNone Confidence = "none"
)

// confidenceRank orders confidences for comparisons.
var confidenceRank = map[Confidence]int{
	ConfidenceNone: 0,
	ConfidenceLow:  1,
	ConfidenceHigh: 2,
}

// Outranks reports whether c is strictly more certain than other.
func (c Confidence) Outranks(other Confidence) bool {
	return confidenceRank[c] > confidenceRank[other]
}

// CardProvider is the insurance carrier guessed from card text.
type CardProvider struct {
	Name       string     `json:"name"`
	Confidence Confidence `json:"confidence"`
}

// ParsedInsuranceCard is the structured result of reading an insurance card.
// Every field is always present; missing values are empty strings and an
// empty phone list.
type ParsedInsuranceCard struct {
	Provider       CardProvider `json:"provider"`
	MemberID       string       `json:"member_id"`
	GroupNumber    string       `json:"group_number"`
	PlanName       string       `json:"plan_name"`
	SubscriberName string       `json:"subscriber_name"`
	PhoneNumbers   []string     `json:"phone_numbers"`
	RxBIN          string       `json:"rx_bin"`
	RxPCN          string       `json:"rx_pcn"`
	RxGroup        string       `json:"rx_group"`
}

// NewParsedInsuranceCard returns a card with every field at its empty default.
func NewParsedInsuranceCard() ParsedInsuranceCard {
	return ParsedInsuranceCard{
		Provider:     CardProvider{Confidence: ConfidenceNone},
		PhoneNumbers: []string{},
	}
}

// Value implements driver.Valuer so the card can be stored in a JSONB column.
func (p ParsedInsuranceCard) Value() (driver.Value, error) {
	if p.PhoneNumbers == nil {
		p.PhoneNumbers = []string{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling insurance card: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for JSONB columns.
func (p *ParsedInsuranceCard) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = NewParsedInsuranceCard()
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scanning insurance card: unsupported type %T", src)
	}
	card := NewParsedInsuranceCard()
	if err := json.Unmarshal(data, &card); err != nil {
		return fmt.Errorf("unmarshaling insurance card: %w", err)
	}
	if card.PhoneNumbers == nil {
		card.PhoneNumbers = []string{}
	}
	*p = card
	return nil
}

// IsEmpty reports whether no field of the card carries a value.
func (p ParsedInsuranceCard) IsEmpty() bool {
	return p.Provider.Name == "" && p.MemberID == "" && p.GroupNumber == "" && p.PlanName == "" &&
		p.SubscriberName == "" && len(p.PhoneNumbers) == 0 && p.RxBIN == "" && p.RxPCN == "" && p.RxGroup == ""
}
