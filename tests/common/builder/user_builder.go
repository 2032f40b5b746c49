//go:build unit || e2e

package builder

import (
	"airdine/internal/domain/user"
	"airdine/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserBuilder struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	RestaurantID *uuid.UUID
	IsActive     bool
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		Role:         "customer",
		IsActive:     true,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithRole(role string) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) WithRestaurantID(restaurantID *uuid.UUID) *UserBuilder {
	u.RestaurantID = restaurantID
	return u
}

func (u *UserBuilder) AsStaffOf(restaurantID uuid.UUID) *UserBuilder {
	u.Role = "staff"
	u.RestaurantID = &restaurantID
	return u
}

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}

func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}

	return user.NewUser(email, u.PasswordHash, role, u.RestaurantID), nil
}

func (u *UserBuilder) BuildReadModel() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		RestaurantID: u.RestaurantID,
		IsActive:     u.IsActive,
	}
}
