package catalog

import (
	"fmt"
	"sync"
)

// Catalog is the fixed set of queryable entities keyed by table name. It is read-only
// once built and safe to share between goroutines.
type Catalog struct {
	entities map[string]Descriptor
	names    []string
}

func New(descriptors ...Descriptor) (*Catalog, error) {
	c := &Catalog{entities: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := c.entities[d.Name()]; dup {
			return nil, fmt.Errorf("duplicate entity %q", d.Name())
		}
		c.entities[d.Name()] = d
		c.names = append(c.names, d.Name())
	}
	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := New(
		Aircrafts,
		Airports,
		BoardingPasses,
		Bookings,
		Flights,
		Seats,
		Tickets,
		TicketFlights,
	)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the catalog of the eight demo database entities.
func Default() *Catalog {
	return defaultCatalog()
}

func (c *Catalog) Resolve(name string) (Descriptor, bool) {
	d, ok := c.entities[name]
	return d, ok
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.entities[name]
	return ok
}

// Names lists the tables in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
