package domain

// ShippingAddress is the destination collected during the information step.
type ShippingAddress struct {
	Name    string `json:"name" bson:"name"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	ZipCode string `json:"zipCode" bson:"zip_code"`
}

// Complete reports whether every field is filled in, the state is a 2-letter
// code and the ZIP is five digits. This is the step-1 completion predicate.
func (a ShippingAddress) Complete() bool {
	return a.Name != "" &&
		a.Phone != "" &&
		a.Address != "" &&
		a.City != "" &&
		len(a.State) == 2 &&
		ValidZip(a.ZipCode)
}

// ValidZip reports whether s is exactly five ASCII digits.
func ValidZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
