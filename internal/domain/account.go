package domain

import (
	"strconv"
	"time"
)

// DefaultServiceType is the listing type of a residential broadband service.
const DefaultServiceType = "Personal_ADSL"

type ServiceID int64

func (id ServiceID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ServiceListing is one entry of the account service listing.
type ServiceListing struct {
	ID   ServiceID
	Type string
}

type ProfileName string

// DefaultProfile is used when no profile is selected.
const DefaultProfile ProfileName = "default"

// Profile is a stored set of account credentials. The password lives in a
// secret store and is referenced by SecretRef.
type Profile struct {
	Name        ProfileName
	Username    string
	SecretRef   string
	ServiceType string
	UpdatedAt   time.Time
}
