package catalog

const (
	AircraftsDataTable  = "aircrafts_data"
	AirportsDataTable   = "airports_data"
	BoardingPassesTable = "boarding_passes"
	BookingsTable       = "bookings"
	FlightsTable        = "flights"
	SeatsTable          = "seats"
	TicketsTable        = "tickets"
	TicketFlightsTable  = "ticket_flights"
)

// LocalizedName is the bilingual name object stored for aircraft models, airports and cities.
type LocalizedName struct {
	En *string `json:"en"`
	Ru *string `json:"ru"`
}

// ContactData is a passenger's contact object.
type ContactData struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type Aircraft struct {
	AircraftCode Text
	Model        JSON[LocalizedName]
	Range        Int32
}

type Airport struct {
	AirportCode Text
	AirportName JSON[LocalizedName]
	City        JSON[LocalizedName]
	Coordinates Point
	Timezone    Text
}

type BoardingPass struct {
	TicketNo   Text
	FlightID   Int32
	BoardingNo Int32
	SeatNo     Text
}

type Booking struct {
	BookRef     Text
	BookDate    Timestamp
	TotalAmount Decimal
}

type Flight struct {
	FlightID           Int32
	FlightNo           Text
	ScheduledDeparture Timestamp
	ScheduledArrival   Timestamp
	DepartureAirport   Text
	ArrivalAirport     Text
	Status             Text
	AircraftCode       Text
	ActualDeparture    Timestamp
	ActualArrival      Timestamp
}

type Seat struct {
	AircraftCode   Text
	SeatNo         Text
	FareConditions Text
}

type Ticket struct {
	TicketNo      Text
	BookRef       Text
	PassengerID   Text
	PassengerName Text
	ContactData   JSON[ContactData]
}

type TicketFlight struct {
	TicketNo       Text
	FlightID       Int32
	FareConditions Text
	Amount         Decimal
}

var Aircrafts = newEntity(AircraftsDataTable,
	textCol("aircraft_code", notNull, func(r *Aircraft) *Text { return &r.AircraftCode }),
	jsonCol("model", nullable, func(r *Aircraft) *JSON[LocalizedName] { return &r.Model }),
	int32Col("range", nullable, func(r *Aircraft) *Int32 { return &r.Range }),
)

var Airports = newEntity(AirportsDataTable,
	textCol("airport_code", notNull, func(r *Airport) *Text { return &r.AirportCode }),
	jsonCol("airport_name", nullable, func(r *Airport) *JSON[LocalizedName] { return &r.AirportName }),
	jsonCol("city", nullable, func(r *Airport) *JSON[LocalizedName] { return &r.City }),
	pointCol("coordinates", nullable, func(r *Airport) *Point { return &r.Coordinates }),
	textCol("timezone", nullable, func(r *Airport) *Text { return &r.Timezone }),
)

var BoardingPasses = newEntity(BoardingPassesTable,
	textCol("ticket_no", notNull, func(r *BoardingPass) *Text { return &r.TicketNo }),
	int32Col("flight_id", nullable, func(r *BoardingPass) *Int32 { return &r.FlightID }),
	int32Col("boarding_no", nullable, func(r *BoardingPass) *Int32 { return &r.BoardingNo }),
	textCol("seat_no", nullable, func(r *BoardingPass) *Text { return &r.SeatNo }),
)

var Bookings = newEntity(BookingsTable,
	textCol("book_ref", notNull, func(r *Booking) *Text { return &r.BookRef }),
	timestampCol("book_date", nullable, func(r *Booking) *Timestamp { return &r.BookDate }),
	decimalCol("total_amount", nullable, func(r *Booking) *Decimal { return &r.TotalAmount }),
)

var Flights = newEntity(FlightsTable,
	int32Col("flight_id", notNull, func(r *Flight) *Int32 { return &r.FlightID }),
	textCol("flight_no", nullable, func(r *Flight) *Text { return &r.FlightNo }),
	timestampCol("scheduled_departure", nullable, func(r *Flight) *Timestamp { return &r.ScheduledDeparture }),
	timestampCol("scheduled_arrival", nullable, func(r *Flight) *Timestamp { return &r.ScheduledArrival }),
	textCol("departure_airport", nullable, func(r *Flight) *Text { return &r.DepartureAirport }),
	textCol("arrival_airport", nullable, func(r *Flight) *Text { return &r.ArrivalAirport }),
	textCol("status", nullable, func(r *Flight) *Text { return &r.Status }),
	textCol("aircraft_code", nullable, func(r *Flight) *Text { return &r.AircraftCode }),
	timestampCol("actual_departure", nullable, func(r *Flight) *Timestamp { return &r.ActualDeparture }),
	timestampCol("actual_arrival", nullable, func(r *Flight) *Timestamp { return &r.ActualArrival }),
)

var Seats = newEntity(SeatsTable,
	textCol("aircraft_code", notNull, func(r *Seat) *Text { return &r.AircraftCode }),
	textCol("seat_no", nullable, func(r *Seat) *Text { return &r.SeatNo }),
	textCol("fare_conditions", nullable, func(r *Seat) *Text { return &r.FareConditions }),
)

var Tickets = newEntity(TicketsTable,
	textCol("ticket_no", notNull, func(r *Ticket) *Text { return &r.TicketNo }),
	textCol("book_ref", nullable, func(r *Ticket) *Text { return &r.BookRef }),
	textCol("passenger_id", nullable, func(r *Ticket) *Text { return &r.PassengerID }),
	textCol("passenger_name", nullable, func(r *Ticket) *Text { return &r.PassengerName }),
	jsonCol("contact_data", nullable, func(r *Ticket) *JSON[ContactData] { return &r.ContactData }),
)

var TicketFlights = newEntity(TicketFlightsTable,
	textCol("ticket_no", notNull, func(r *TicketFlight) *Text { return &r.TicketNo }),
	int32Col("flight_id", nullable, func(r *TicketFlight) *Int32 { return &r.FlightID }),
	textCol("fare_conditions", nullable, func(r *TicketFlight) *Text { return &r.FareConditions }),
	decimalCol("amount", nullable, func(r *TicketFlight) *Decimal { return &r.Amount }),
)
