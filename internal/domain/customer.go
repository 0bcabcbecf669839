package domain

import "errors"

type GuestContact struct {
	Name  string
	Phone string
	Email string
}

// Customer is either an authenticated user reference or a guest contact,
// never both. Construct through NewAuthenticatedCustomer or
// NewGuestCustomer so the exactly-one invariant holds from creation.
type Customer struct {
	userID string
	guest  *GuestContact
}

func NewAuthenticatedCustomer(userID string) (Customer, error) {
	if userID == "" {
		return Customer{}, errors.New("user id is required")
	}
	return Customer{userID: userID}, nil
}

func NewGuestCustomer(name, phone, email string) (Customer, error) {
	if name == "" || phone == "" || email == "" {
		return Customer{}, errors.New("guest name, phone and email are required")
	}
	return Customer{guest: &GuestContact{Name: name, Phone: phone, Email: email}}, nil
}

func (c Customer) Authenticated() bool {
	return c.userID != ""
}

func (c Customer) UserID() string {
	return c.userID
}

func (c Customer) Guest() (GuestContact, bool) {
	if c.guest == nil {
		return GuestContact{}, false
	}
	return *c.guest, true
}
