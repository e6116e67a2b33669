package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Amounts and booking dates are TEXT so SQLite keeps them exactly as written; flight
// times are TIMESTAMP so the driver hands them back as time.Time.
var demoSchema = []string{
	`CREATE TABLE aircrafts_data (
		aircraft_code TEXT NOT NULL PRIMARY KEY,
		model TEXT NOT NULL,
		"range" INTEGER NOT NULL
	)`,
	`CREATE TABLE airports_data (
		airport_code TEXT NOT NULL PRIMARY KEY,
		airport_name TEXT NOT NULL,
		city TEXT NOT NULL,
		coordinates TEXT NOT NULL,
		timezone TEXT NOT NULL
	)`,
	`CREATE TABLE boarding_passes (
		ticket_no TEXT NOT NULL,
		flight_id INTEGER NOT NULL,
		boarding_no INTEGER NOT NULL,
		seat_no TEXT NOT NULL,
		PRIMARY KEY (ticket_no, flight_id)
	)`,
	`CREATE TABLE bookings (
		book_ref TEXT NOT NULL PRIMARY KEY,
		book_date TEXT NOT NULL,
		total_amount TEXT NOT NULL
	)`,
	`CREATE TABLE flights (
		flight_id INTEGER NOT NULL PRIMARY KEY,
		flight_no TEXT NOT NULL,
		scheduled_departure TIMESTAMP NOT NULL,
		scheduled_arrival TIMESTAMP NOT NULL,
		departure_airport TEXT NOT NULL,
		arrival_airport TEXT NOT NULL,
		status TEXT NOT NULL,
		aircraft_code TEXT NOT NULL,
		actual_departure TIMESTAMP,
		actual_arrival TIMESTAMP
	)`,
	`CREATE TABLE seats (
		aircraft_code TEXT NOT NULL,
		seat_no TEXT NOT NULL,
		fare_conditions TEXT NOT NULL,
		PRIMARY KEY (aircraft_code, seat_no)
	)`,
	`CREATE TABLE tickets (
		ticket_no TEXT NOT NULL PRIMARY KEY,
		book_ref TEXT NOT NULL,
		passenger_id TEXT NOT NULL,
		passenger_name TEXT NOT NULL,
		contact_data TEXT
	)`,
	`CREATE TABLE ticket_flights (
		ticket_no TEXT NOT NULL,
		flight_id INTEGER NOT NULL,
		fare_conditions TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (ticket_no, flight_id)
	)`,
}

var demoRows = []string{
	`INSERT INTO aircrafts_data VALUES
		('773', '{"en": "Boeing 777-300", "ru": "Боинг 777-300"}', 11100),
		('763', '{"en": "Boeing 767-300", "ru": "Боинг 767-300"}', 7900),
		('SU9', '{"en": "Sukhoi Superjet-100", "ru": "Сухой Суперджет-100"}', 3000),
		('319', '{"en": "Airbus A319-100", "ru": "Аэробус A319-100"}', 6700)`,
	`INSERT INTO airports_data VALUES
		('YKS', '{"en": "Yakutsk Airport", "ru": "Якутск"}', '{"en": "Yakutsk", "ru": "Якутск"}', '(129.77099609375,62.0932998657226562)', 'Asia/Yakutsk'),
		('DME', '{"en": "Domodedovo International Airport", "ru": "Домодедово"}', '{"en": "Moscow", "ru": "Москва"}', '(37.9062995910644531,55.4087982177734375)', 'Europe/Moscow'),
		('KZN', '{"en": "Kazan International Airport", "ru": "Казань"}', '{"en": "Kazan", "ru": "Казань"}', '(49.278701782227,55.606201171875)', 'Europe/Moscow')`,
	`INSERT INTO boarding_passes VALUES
		('0005435212351', 30625, 1, '2D'),
		('0005435212386', 30625, 2, '3G'),
		('0005435212381', 30625, 3, '4H')`,
	`INSERT INTO bookings VALUES
		('00000F', '2017-07-05 03:12:00+03', '265700.00'),
		('000012', '2017-07-14 09:02:00+03', '37900.00'),
		('0002D8', '2017-08-07 21:40:00+03', '99800.00')`,
	`INSERT INTO flights VALUES
		(1185, 'PG0134', '2017-09-10 09:50:00+03:00', '2017-09-10 14:55:00+03:00', 'DME', 'BTK', 'Scheduled', '319', NULL, NULL),
		(30625, 'PG0216', '2017-08-15 14:05:00+03:00', '2017-08-15 15:10:00+03:00', 'DME', 'KZN', 'Arrived', '763', '2017-08-15 14:10:00+03:00', '2017-08-15 15:16:00+03:00'),
		(3979, 'PG0052', '2017-08-25 14:50:00+03:00', '2017-08-25 17:35:00+03:00', 'VKO', 'HMA', 'Scheduled', 'CR2', NULL, NULL)`,
	`INSERT INTO seats VALUES
		('319', '2A', 'Business'),
		('319', '2C', 'Business'),
		('773', '1A', 'Business'),
		('773', '30B', 'Economy')`,
	`INSERT INTO tickets VALUES
		('0005432000987', '06B046', '8149 604011', 'VALERIY TIKHONOV', '{"phone": "+70127117011"}'),
		('0005432000988', '06B046', '8499 420203', 'EVGENIYA ALEKSEEVA', '{"email": "alekseeva@example.com", "phone": "+70378089255"}'),
		('0005435212351', '00000F', '1011 752484', 'ARTUR GERASIMOV', NULL)`,
	`INSERT INTO ticket_flights VALUES
		('0005432159776', 30625, 'Business', '42100.00'),
		('0005435212351', 30625, 'Business', '42100.00'),
		('0005435212386', 30625, 'Economy', '12200.00')`,
}

// SeedDemo creates the demo tables and fills them with a handful of rows.
func SeedDemo(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range append(append([]string{}, demoSchema...), demoRows...) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return tx.Commit()
}

// OpenDemo returns a connector over a private in-memory database holding the demo data.
func OpenDemo(ctx context.Context) (*SQLiteConnector, error) {
	db, err := sqlx.Open("sqlite3", "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := SeedDemo(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return NewFromDB(db), nil
}

// CreateDemoFile writes the demo tables and rows to a new sqlite database at path.
func CreateDemoFile(ctx context.Context, path string) error {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var count int
	if err := db.GetContext(ctx, &count, "SELECT count(*) FROM sqlite_master WHERE type = 'table'"); err != nil {
		return fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if count > 0 {
		return fmt.Errorf("%s already has %d tables", path, count)
	}
	return SeedDemo(ctx, db)
}
