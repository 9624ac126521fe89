package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

// Seed is a demo bootstrap document: a set of users to register and offers
// to post. LoadSeed parses one; lendingd does not call it at startup, and
// nothing in this module registers the users or posts the offers.
// There is no equivalent in the teacher (a consensus chain has no seed-data
// concept); this is modeled on the ops/seeds convention of shipping
// human-editable YAML fixtures for demo environments rather than the
// teacher's Go struct literal test fixtures.
type Seed struct {
	Users  []SeedUser  `yaml:"users"`
	Offers []SeedOffer `yaml:"offers"`
}

// SeedUser registers an address under a display name.
type SeedUser struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
}

// SeedOffer describes a standing loan offer from an already-seeded lender.
type SeedOffer struct {
	Lender                   string `yaml:"lender"`
	Amount                   string `yaml:"amount"`
	Token                    string `yaml:"token"`
	InterestRateBps          uint16 `yaml:"interestRateBps"`
	DurationSeconds          uint64 `yaml:"durationSeconds"`
	RequiredCollateralAmount string `yaml:"requiredCollateralAmount,omitempty"`
	CollateralToken          string `yaml:"collateralToken,omitempty"`
}

// ParsedUser is SeedUser with its address decoded.
type ParsedUser struct {
	Address types.Address
	Name    string
}

// LoadSeed reads and YAML-decodes a Seed document from path. Field values
// are not checked; ParseUsers decodes the user addresses.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("config: parse seed file: %w", err)
	}
	return &seed, nil
}

// ParseUsers decodes every SeedUser's address field.
func (s *Seed) ParseUsers() ([]ParsedUser, error) {
	out := make([]ParsedUser, 0, len(s.Users))
	for i, u := range s.Users {
		addr, err := types.ParseAddress(u.Address)
		if err != nil {
			return nil, fmt.Errorf("config: seed user #%d: %w", i, err)
		}
		out = append(out, ParsedUser{Address: addr, Name: u.Name})
	}
	return out, nil
}
