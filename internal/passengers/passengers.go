// Package passengers builds and validates the passenger roster attached to
// a booking.
package passengers

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Passenger is one traveler on the booking
type Passenger struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Mobile string `json:"mobile" validate:"required,min=10"`
	Gender string `json:"gender" validate:"oneof=male female"`
	Type   string `json:"type" validate:"oneof=Adult Child"`
}

// rosterFile is the YAML roster format. Contact email and mobile are
// shared by all passengers; the remote API accepts one contact per order.
type rosterFile struct {
	Email      string        `yaml:"email"`
	Mobile     string        `yaml:"mobile"`
	Passengers []rosterEntry `yaml:"passengers"`
}

type rosterEntry struct {
	Name   string `yaml:"name"`
	Gender string `yaml:"gender"`
	Type   string `yaml:"type"`
}

// Service validates and shapes passenger rosters
type Service struct {
	validate *validator.Validate
}

// NewService creates a passenger service
func NewService() *Service {
	return &Service{
		validate: validator.New(),
	}
}

// LoadRoster reads and validates the YAML passenger roster at path
func (s *Service) LoadRoster(path string) ([]Passenger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read passenger roster %s: %w", path, err)
	}

	var roster rosterFile
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse passenger roster %s: %w", path, err)
	}

	list := make([]Passenger, 0, len(roster.Passengers))
	for _, entry := range roster.Passengers {
		list = append(list, Passenger{
			Name:   entry.Name,
			Email:  roster.Email,
			Mobile: roster.Mobile,
			Gender: entry.Gender,
			Type:   entry.Type,
		})
	}

	if err := s.Validate(list); err != nil {
		return nil, err
	}

	return list, nil
}

// Validate checks every passenger on the roster
func (s *Service) Validate(list []Passenger) error {
	if len(list) == 0 {
		return fmt.Errorf("no passengers provided")
	}

	for i, p := range list {
		if err := s.validate.Struct(p); err != nil {
			return fmt.Errorf("passenger %d (%s): %w", i+1, p.Name, err)
		}
	}

	return nil
}

// AdjustCount shapes the roster to exactly n passengers: truncating when
// the roster is longer, repeating entries cyclically when it is shorter
func AdjustCount(list []Passenger, n int) []Passenger {
	if len(list) == 0 || n <= 0 {
		return nil
	}

	if len(list) >= n {
		return list[:n]
	}

	adjusted := make([]Passenger, 0, n)
	adjusted = append(adjusted, list...)
	for len(adjusted) < n {
		adjusted = append(adjusted, list[len(adjusted)%len(list)])
	}
	return adjusted
}

// Summary renders a one-line-per-passenger description for logging
func Summary(list []Passenger) string {
	if len(list) == 0 {
		return "no passengers"
	}

	parts := make([]string, 0, len(list))
	for i, p := range list {
		parts = append(parts, fmt.Sprintf("%d. %s (%s, %s)", i+1, p.Name, p.Gender, p.Type))
	}
	return strings.Join(parts, "\n")
}
