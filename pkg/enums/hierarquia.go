package enums

import "fmt"

// Hierarquia represents a user's permission tier as reported by the
// restaurant backend.
type Hierarquia string

const (
	HierarquiaUsuario     Hierarquia = "usuario"
	HierarquiaFuncionario Hierarquia = "funcionario"
	HierarquiaColaborador Hierarquia = "colaborador"
	HierarquiaAdmin       Hierarquia = "admin"
)

var validHierarquias = []Hierarquia{
	HierarquiaUsuario,
	HierarquiaFuncionario,
	HierarquiaColaborador,
	HierarquiaAdmin,
}

// Staff tiers get routed to the staff surfaces instead of the customer ones.
var hierarquiaLevels = map[Hierarquia]int{
	HierarquiaUsuario:     0,
	HierarquiaFuncionario: 1,
	HierarquiaColaborador: 2,
	HierarquiaAdmin:       3,
}

// String implements fmt.Stringer.
func (h Hierarquia) String() string {
	return string(h)
}

// IsValid reports whether the value is a known Hierarquia.
func (h Hierarquia) IsValid() bool {
	for _, candidate := range validHierarquias {
		if candidate == h {
			return true
		}
	}
	return false
}

// Level returns the tier's position in the permission ordering. Unknown
// values map to the lowest tier.
func (h Hierarquia) Level() int {
	return hierarquiaLevels[h]
}

// AtLeast reports whether the tier grants at least the permissions of other.
func (h Hierarquia) AtLeast(other Hierarquia) bool {
	return h.Level() >= other.Level()
}

// IsStaff reports whether the tier belongs to restaurant staff.
func (h Hierarquia) IsStaff() bool {
	return h.AtLeast(HierarquiaFuncionario)
}

// ParseHierarquia converts raw input into a Hierarquia.
func ParseHierarquia(value string) (Hierarquia, error) {
	for _, candidate := range validHierarquias {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid hierarquia %q", value)
}

// NormalizeHierarquia maps raw backend input onto a known tier, defaulting
// unknown or empty values to the customer tier.
func NormalizeHierarquia(value string) Hierarquia {
	parsed, err := ParseHierarquia(value)
	if err != nil {
		return HierarquiaUsuario
	}
	return parsed
}
