package credstore

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var errInvalidPhone = errors.New("phone: must be a valid phone number")

// PhoneNormalizer validates phone numbers and formats them as E164
type PhoneNormalizer struct {
	region string
}

// NewPhoneNormalizer parses numbers without a country prefix in region
func NewPhoneNormalizer(region string) *PhoneNormalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = "US"
	}
	return &PhoneNormalizer{region: region}
}

// Normalize returns the E164 form of phone
func (p *PhoneNormalizer) Normalize(phone string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(phone), p.region)
	if err != nil {
		return "", invalidPayload(errInvalidPhone)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", invalidPayload(errInvalidPhone)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
