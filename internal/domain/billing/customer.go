package billing

import (
	"regexp"
	"strings"

	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Customer represents a billable party owned by one tenant
type Customer struct {
	shared.TenantAggregateRoot
	Name    string
	Email   string
	Phone   string
	Address string
}

var customerEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NewCustomer creates a new customer for the given tenant
func NewCustomer(tenantID uuid.UUID, name, email, phone, address string) (*Customer, error) {
	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
	}
	if err := c.update(name, email, phone, address); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the customer's contact details
func (c *Customer) Update(name, email, phone, address string) error {
	if err := c.update(name, email, phone, address); err != nil {
		return err
	}
	c.Touch()
	c.IncrementVersion()
	return nil
}

func (c *Customer) update(name, email, phone, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewInvalidInputError("Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewInvalidInputError("Customer name cannot exceed 200 characters")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if len(email) > 200 {
			return shared.NewInvalidInputError("Email cannot exceed 200 characters")
		}
		if !customerEmailRegex.MatchString(email) {
			return shared.NewInvalidInputError("Invalid email format")
		}
	}

	if len(phone) > 50 {
		return shared.NewInvalidInputError("Phone cannot exceed 50 characters")
	}

	c.Name = name
	c.Email = email
	c.Phone = strings.TrimSpace(phone)
	c.Address = strings.TrimSpace(address)
	return nil
}
