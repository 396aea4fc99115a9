package http

import (
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
)

type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Courier struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

type NewCourier struct {
	Name     string    `json:"name"`
	Speed    int       `json:"speed"`
	Location *Location `json:"location,omitempty"`
}

type NewStoragePlace struct {
	Name        string `json:"name"`
	TotalVolume int    `json:"totalVolume"`
}

type NewOrder struct {
	OrderID *string `json:"orderId,omitempty"`
	Street  string  `json:"street"`
	Volume  int     `json:"volume"`
}

type Order struct {
	ID        string   `json:"id"`
	Location  Location `json:"location"`
	Status    string   `json:"status"`
	CourierID *string  `json:"courierId,omitempty"`
}

type Created struct {
	ID string `json:"id"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func toLocation(l kernel.Location) Location {
	return Location{X: int(l.X()), Y: int(l.Y())}
}

func toCouriers(couriers []queries.CourierResponse) []Courier {
	response := make([]Courier, len(couriers))
	for i, c := range couriers {
		response[i] = Courier{ID: c.ID.String(), Name: c.Name, Location: toLocation(c.Location)}
	}
	return response
}
