package events

import (
	"strconv"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

const (
	TypeUserRegistered     = "registry.userRegistered"
	TypeUserProfileUpdated = "registry.userProfileUpdated"
)

// UserRegistered is emitted by UserRegistry.Register on a successful
// one-shot registration.
type UserRegistered struct {
	Address          types.Address
	Name             string
	RegistrationTime int64
}

func (UserRegistered) EventType() string { return TypeUserRegistered }

func (e UserRegistered) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeUserRegistered,
		Attributes: map[string]string{
			"address":          e.Address.String(),
			"name":             e.Name,
			"registrationTime": strconv.FormatInt(e.RegistrationTime, 10),
		},
	}
}

// UserProfileUpdated is emitted by UserRegistry.UpdateName.
type UserProfileUpdated struct {
	Address types.Address
	Name    string
}

func (UserProfileUpdated) EventType() string { return TypeUserProfileUpdated }

func (e UserProfileUpdated) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeUserProfileUpdated,
		Attributes: map[string]string{
			"address": e.Address.String(),
			"name":    e.Name,
		},
	}
}
