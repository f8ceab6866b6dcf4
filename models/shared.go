package models

// Location is the postal location used by users, requirements, listings and bookings.
type Location struct {
	Village  string `bson:"village,omitempty" json:"village,omitempty"`
	District string `bson:"district" json:"district"`
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	Address  string `bson:"address,omitempty" json:"address,omitempty"`
	Pincode  string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// ServiceType identifies the kind of work a requirement, listing or booking is about.
type ServiceType string

const (
	ServiceTractor ServiceType = "tractor"
	ServiceWorker  ServiceType = "worker"
)

func (t ServiceType) Valid() bool {
	return t == ServiceTractor || t == ServiceWorker
}

// ServiceRef points at a standing listing. It replaces the serviceId/serviceModel pair.
type ServiceRef struct {
	Kind ServiceType `bson:"kind" json:"kind"`
	ID   string      `bson:"id" json:"id"`
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role Role
}
