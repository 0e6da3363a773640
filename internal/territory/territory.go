// Package territory serves the Polish administrative register (TERYT) used by
// the cascading voivodeship / city / street address selects.
package territory

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
)

// ErrInvalidCode is returned for a malformed TERYT code.
var ErrInvalidCode = errors.New("invalid territorial code")

// Voivodeship is a top-level region.
type Voivodeship struct {
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}

// City is a locality in the SIMC register.
type City struct {
	Code            string `json:"code" db:"code"`
	VoivodeshipCode string `json:"voivodeshipCode" db:"voivodeship_code"`
	Name            string `json:"name" db:"name"`
	County          string `json:"county" db:"county"`
	Commune         string `json:"commune" db:"commune"`
}

// Street is an entry of the ULIC register.
type Street struct {
	Code     string `json:"code" db:"code"`
	CityCode string `json:"cityCode" db:"city_code"`
	Prefix   string `json:"prefix" db:"prefix"`
	Name     string `json:"name" db:"name"`
}

// FullName returns the street with its prefix, as in "ul. Piękna".
func (s Street) FullName() string {
	if s.Prefix == "" {
		return s.Name
	}
	return s.Prefix + " " + s.Name
}

// Lookup is the read-only register. Every list is ordered by name.
type Lookup interface {
	Voivodeships(ctx context.Context) ([]Voivodeship, error)
	Cities(ctx context.Context, voivodeship string) ([]City, error)
	Streets(ctx context.Context, voivodeship, city string) ([]Street, error)
}

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

// PgStore reads the register from PostgreSQL.
type PgStore struct {
	db       Querier
	validate *validator.Validate
}

// NewPgStore returns a store reading through db.
func NewPgStore(db Querier) *PgStore {
	return &PgStore{db: db, validate: validator.New()}
}

type codes struct {
	Voivodeship string `validate:"required,numeric,len=2"`
	City        string `validate:"omitempty,numeric,len=7"`
}

func (s *PgStore) checkCodes(c codes) error {
	if err := s.validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidCode, verrs[0].Field())
		}
		return fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	return nil
}

func (s *PgStore) Voivodeships(ctx context.Context) ([]Voivodeship, error) {
	rows, err := s.db.Query(ctx, `SELECT code, name FROM voivodeships ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query voivodeships: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Voivodeship])
}

func (s *PgStore) Cities(ctx context.Context, voivodeship string) ([]City, error) {
	if err := s.checkCodes(codes{Voivodeship: voivodeship}); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT code, voivodeship_code, name, county, commune
		FROM cities WHERE voivodeship_code = $1 ORDER BY name, code`, voivodeship)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[City])
}

func (s *PgStore) Streets(ctx context.Context, voivodeship, city string) ([]Street, error) {
	if err := s.checkCodes(codes{Voivodeship: voivodeship, City: city}); err != nil {
		return nil, err
	}
	if city == "" {
		return nil, fmt.Errorf("%w: City", ErrInvalidCode)
	}
	rows, err := s.db.Query(ctx, `SELECT code, city_code, prefix, name
		FROM streets WHERE voivodeship_code = $1 AND city_code = $2 ORDER BY name, code`, voivodeship, city)
	if err != nil {
		return nil, fmt.Errorf("query streets: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Street])
}
